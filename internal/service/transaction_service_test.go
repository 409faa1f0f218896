package service

import (
	"testing"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTransactionServiceForTest() (*TransactionService, *testutil.MockTransactionRepository, *testutil.MockAccountRepository, *testutil.MockCategoryRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewTransactionService(testutil.NewMockTxStarter(), transactionRepo, accountRepo, categoryRepo)
	return svc, transactionRepo, accountRepo, categoryRepo
}

func TestCreateTransaction_IncomeCreditsAccount(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("500")
	accountRepo.AddAccount(account)

	created, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("150"),
		Type:      domain.TransactionTypeIncome,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("Expected transaction to get an ID")
	}
	if !account.Balance.Equal(decimal.RequireFromString("650")) {
		t.Errorf("Expected balance 650, got %s", account.Balance)
	}
}

func TestCreateTransaction_ExpenseDebitsAccount(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("500")
	accountRepo.AddAccount(account)

	_, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("200"),
		Type:      domain.TransactionTypeExpense,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("300")) {
		t.Errorf("Expected balance 300, got %s", account.Balance)
	}
}

func TestCreateTransaction_ExpenseInsufficientFunds(t *testing.T) {
	svc, transactionRepo, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("100")
	accountRepo.AddAccount(account)

	_, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("100.01"),
		Type:      domain.TransactionTypeExpense,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != domain.ErrInsufficientFunds {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected balance unchanged at 100, got %s", account.Balance)
	}
	listed, err := transactionRepo.GetByUser(testUserID, &domain.TransactionFilters{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listed.Transactions) != 0 {
		t.Errorf("Expected no transaction row, got %d", len(listed.Transactions))
	}
}

func TestCreateTransaction_ExactBalanceAllowed(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("100")
	accountRepo.AddAccount(account)

	_, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("100"),
		Type:      domain.TransactionTypeExpense,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.IsZero() {
		t.Errorf("Expected balance 0, got %s", account.Balance)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("500")
	accountRepo.AddAccount(account)

	tests := []struct {
		name    string
		input   CreateTransactionInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: CreateTransactionInput{
				Amount:    decimal.Zero,
				Type:      domain.TransactionTypeIncome,
				AccountID: account.ID,
				Date:      time.Now(),
			},
			wantErr: domain.ErrAmountInvalid,
		},
		{
			name: "unknown type",
			input: CreateTransactionInput{
				Amount:    decimal.RequireFromString("10"),
				Type:      domain.TransactionType("transfer"),
				AccountID: account.ID,
				Date:      time.Now(),
			},
			wantErr: domain.ErrInvalidType,
		},
		{
			name: "missing date",
			input: CreateTransactionInput{
				Amount:    decimal.RequireFromString("10"),
				Type:      domain.TransactionTypeIncome,
				AccountID: account.ID,
			},
			wantErr: domain.ErrDateRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(testUserID, tt.input)
			if err != tt.wantErr {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateTransaction_UnknownCategory(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("500")
	accountRepo.AddAccount(account)

	categoryID := uuid.New()
	_, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:     decimal.RequireFromString("10"),
		Type:       domain.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: &categoryID,
		Date:       time.Now(),
	})
	if err != domain.ErrCategoryNotFound {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestDeleteTransaction_ReversesIncome(t *testing.T) {
	svc, transactionRepo, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("0")
	accountRepo.AddAccount(account)

	created, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("300"),
		Type:      domain.TransactionTypeIncome,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.DeleteTransaction(testUserID, created.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.IsZero() {
		t.Errorf("Expected balance back to 0, got %s", account.Balance)
	}
	if _, err := transactionRepo.GetByID(testUserID, created.ID); err != domain.ErrTransactionNotFound {
		t.Errorf("Expected ErrTransactionNotFound after delete, got %v", err)
	}
}

func TestDeleteTransaction_IncomeReversalInsufficientFunds(t *testing.T) {
	svc, transactionRepo, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("0")
	accountRepo.AddAccount(account)

	created, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("300"),
		Type:      domain.TransactionTypeIncome,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Spend the credited money so reversing the income would go negative.
	account.Balance = decimal.RequireFromString("50")

	if err := svc.DeleteTransaction(testUserID, created.ID); err != domain.ErrInsufficientFunds {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := transactionRepo.GetByID(testUserID, created.ID); err != nil {
		t.Errorf("Expected transaction to remain, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Expected balance unchanged at 50, got %s", account.Balance)
	}
}

func TestDeleteTransaction_ExpenseRestoresBalance(t *testing.T) {
	svc, _, accountRepo, _ := newTransactionServiceForTest()
	account := testAccount("500")
	accountRepo.AddAccount(account)

	created, err := svc.CreateTransaction(testUserID, CreateTransactionInput{
		Amount:    decimal.RequireFromString("200"),
		Type:      domain.TransactionTypeExpense,
		AccountID: account.ID,
		Date:      time.Now(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.DeleteTransaction(testUserID, created.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected balance restored to 500, got %s", account.Balance)
	}
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	svc, _, _, _ := newTransactionServiceForTest()

	if err := svc.DeleteTransaction(testUserID, uuid.New()); err != domain.ErrTransactionNotFound {
		t.Fatalf("Expected ErrTransactionNotFound, got %v", err)
	}
}

func TestListTransactions_InvalidFilters(t *testing.T) {
	svc, _, _, _ := newTransactionServiceForTest()

	start := time.Now()
	end := start.Add(-time.Hour)
	if _, err := svc.ListTransactions(testUserID, &domain.TransactionFilters{StartDate: &start, EndDate: &end}); err != domain.ErrDateRangeInvalid {
		t.Errorf("Expected ErrDateRangeInvalid, got %v", err)
	}

	badType := domain.TransactionType("transfer")
	if _, err := svc.ListTransactions(testUserID, &domain.TransactionFilters{Type: &badType}); err != domain.ErrInvalidType {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
}

func TestListTransactions_NilFilters(t *testing.T) {
	svc, transactionRepo, _, _ := newTransactionServiceForTest()
	transactionRepo.AddTransaction(&domain.Transaction{
		ID:        uuid.New(),
		UserID:    testUserID,
		Amount:    decimal.RequireFromString("10"),
		Type:      domain.TransactionTypeIncome,
		AccountID: uuid.New(),
		Date:      time.Now(),
	})

	listed, err := svc.ListTransactions(testUserID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(listed.Transactions) != 1 {
		t.Errorf("Expected 1 transaction, got %d", len(listed.Transactions))
	}
}

func TestGetTransactionStats_InvalidRange(t *testing.T) {
	svc, _, _, _ := newTransactionServiceForTest()

	if _, err := svc.GetTransactionStats(testUserID, time.Time{}, time.Now()); err != domain.ErrDateRangeInvalid {
		t.Errorf("Expected ErrDateRangeInvalid for zero start, got %v", err)
	}
	now := time.Now()
	if _, err := svc.GetTransactionStats(testUserID, now, now.Add(-time.Hour)); err != domain.ErrDateRangeInvalid {
		t.Errorf("Expected ErrDateRangeInvalid for reversed range, got %v", err)
	}
}
