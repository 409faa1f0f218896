package service

import (
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

// ReportService builds transaction reports over a time window
type ReportService struct {
	transactionRepo domain.TransactionRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{transactionRepo: transactionRepo}
}

// Report summarizes the transactions inside a window
type Report struct {
	StartDate    time.Time             `json:"startDate"`
	EndDate      time.Time             `json:"endDate"`
	TotalIncome  decimal.Decimal       `json:"totalIncome"`
	TotalExpense decimal.Decimal       `json:"totalExpense"`
	Balance      decimal.Decimal       `json:"balance"`
	Count        int                   `json:"count"`
	Transactions []*domain.Transaction `json:"transactions"`
}

// ReportInput selects the report window: either a named period or an
// explicit start/end date pair
type ReportInput struct {
	TimePeriod string
	StartDate  *time.Time
	EndDate    *time.Time
}

// BuildReport resolves the window and summarizes the transactions in it.
// An empty window is NotFound so clients can distinguish "no activity"
// from a zero-sum period.
func (s *ReportService) BuildReport(userID string, input ReportInput) (*Report, error) {
	var start, end time.Time
	switch {
	case input.TimePeriod != "":
		if !util.ValidPeriod(input.TimePeriod) {
			return nil, domain.ErrInvalidPeriod
		}
		start, end = util.PeriodRange(input.TimePeriod, time.Now())
	case input.StartDate != nil && input.EndDate != nil:
		if input.EndDate.Before(*input.StartDate) {
			return nil, domain.ErrDateRangeInvalid
		}
		start, end = *input.StartDate, *input.EndDate
	default:
		return nil, domain.ErrDateRangeInvalid
	}

	transactions, err := s.transactionRepo.GetByDateRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, domain.ErrTransactionNotFound
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for _, transaction := range transactions {
		if transaction.Type == domain.TransactionTypeIncome {
			totalIncome = totalIncome.Add(transaction.Amount)
		} else {
			totalExpense = totalExpense.Add(transaction.Amount)
		}
	}

	return &Report{
		StartDate:    start,
		EndDate:      end,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome.Sub(totalExpense),
		Count:        len(transactions),
		Transactions: transactions,
	}, nil
}
