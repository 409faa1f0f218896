package service

import (
	"testing"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/testutil"
	"github.com/finwise-app/finwise-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func reportTransaction(transactionType domain.TransactionType, amount string, date time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		UserID:    testUserID,
		Amount:    decimal.RequireFromString(amount),
		Type:      transactionType,
		AccountID: uuid.New(),
		Date:      date,
	}
}

func TestBuildReport_ExplicitRange(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewReportService(transactionRepo)

	now := time.Now()
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "1000", now.Add(-48*time.Hour)))
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeExpense, "250", now.Add(-24*time.Hour)))
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeExpense, "150", now.Add(-12*time.Hour)))

	start := now.Add(-72 * time.Hour)
	report, err := svc.BuildReport(testUserID, ReportInput{StartDate: &start, EndDate: &now})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !report.TotalIncome.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("Expected total income 1000, got %s", report.TotalIncome)
	}
	if !report.TotalExpense.Equal(decimal.RequireFromString("400")) {
		t.Errorf("Expected total expense 400, got %s", report.TotalExpense)
	}
	if !report.Balance.Equal(decimal.RequireFromString("600")) {
		t.Errorf("Expected balance 600, got %s", report.Balance)
	}
	if report.Count != 3 {
		t.Errorf("Expected count 3, got %d", report.Count)
	}
	if len(report.Transactions) != 3 {
		t.Errorf("Expected 3 transactions, got %d", len(report.Transactions))
	}
}

func TestBuildReport_ExplicitRangeExcludesOutside(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewReportService(transactionRepo)

	now := time.Now()
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "100", now.Add(-10*24*time.Hour)))
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "50", now.Add(-time.Hour)))

	start := now.Add(-48 * time.Hour)
	report, err := svc.BuildReport(testUserID, ReportInput{StartDate: &start, EndDate: &now})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Count != 1 {
		t.Fatalf("Expected 1 transaction in window, got %d", report.Count)
	}
	if !report.TotalIncome.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Expected total income 50, got %s", report.TotalIncome)
	}
}

func TestBuildReport_NamedPeriods(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := NewReportService(transactionRepo)

	now := time.Now()
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "10", now.Add(-2*time.Hour)))
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "20", now.Add(-3*24*time.Hour)))
	transactionRepo.AddTransaction(reportTransaction(domain.TransactionTypeIncome, "30", now.Add(-20*24*time.Hour)))

	tests := []struct {
		period    string
		wantCount int
		wantTotal string
	}{
		{util.PeriodDaily, 1, "10"},
		{util.PeriodWeekly, 2, "30"},
		{util.PeriodMonthly, 3, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			report, err := svc.BuildReport(testUserID, ReportInput{TimePeriod: tt.period})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if report.Count != tt.wantCount {
				t.Errorf("Expected count %d, got %d", tt.wantCount, report.Count)
			}
			if !report.TotalIncome.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("Expected total income %s, got %s", tt.wantTotal, report.TotalIncome)
			}
		})
	}
}

func TestBuildReport_InvalidPeriod(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())

	if _, err := svc.BuildReport(testUserID, ReportInput{TimePeriod: "yearly"}); err != domain.ErrInvalidPeriod {
		t.Fatalf("Expected ErrInvalidPeriod, got %v", err)
	}
}

func TestBuildReport_MissingWindow(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())

	now := time.Now()
	tests := []struct {
		name  string
		input ReportInput
	}{
		{"no period or dates", ReportInput{}},
		{"start only", ReportInput{StartDate: &now}},
		{"end only", ReportInput{EndDate: &now}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.BuildReport(testUserID, tt.input); err != domain.ErrDateRangeInvalid {
				t.Errorf("Expected ErrDateRangeInvalid, got %v", err)
			}
		})
	}
}

func TestBuildReport_ReversedRange(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())

	end := time.Now()
	start := end.Add(time.Hour)
	if _, err := svc.BuildReport(testUserID, ReportInput{StartDate: &start, EndDate: &end}); err != domain.ErrDateRangeInvalid {
		t.Fatalf("Expected ErrDateRangeInvalid, got %v", err)
	}
}

func TestBuildReport_EmptyWindow(t *testing.T) {
	svc := NewReportService(testutil.NewMockTransactionRepository())

	if _, err := svc.BuildReport(testUserID, ReportInput{TimePeriod: util.PeriodMonthly}); err != domain.ErrTransactionNotFound {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}
