package domain

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int32
		perPage   int32
		wantPages int64
		wantPage  int32
		wantPer   int32
	}{
		{"exact pages", 100, 1, 10, 10, 1, 10},
		{"partial last page", 101, 2, 10, 11, 2, 10},
		{"empty", 0, 1, 10, 0, 1, 10},
		{"zero page defaults to 1", 50, 0, 10, 5, 1, 10},
		{"zero perPage uses default", 25, 1, 0, 3, 1, DefaultPageSize},
		{"negative page defaults to 1", 10, -3, 10, 1, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.perPage)
			if p.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, p.Total)
			}
			if p.Pages != tt.wantPages {
				t.Errorf("Expected %d pages, got %d", tt.wantPages, p.Pages)
			}
			if p.CurrentPage != tt.wantPage {
				t.Errorf("Expected page %d, got %d", tt.wantPage, p.CurrentPage)
			}
			if p.PerPage != tt.wantPer {
				t.Errorf("Expected perPage %d, got %d", tt.wantPer, p.PerPage)
			}
		})
	}
}
