package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBudget_Remaining(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		spent  string
		want   string
	}{
		{"untouched", "400", "0", "400"},
		{"partially spent", "400", "150.50", "249.50"},
		{"fully spent", "400", "400", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Budget{
				Amount:          decimal.RequireFromString(tt.amount),
				CurrentSpending: decimal.RequireFromString(tt.spent),
			}
			if got := b.Remaining(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Remaining() = %s, want %s", got, tt.want)
			}
		})
	}
}
