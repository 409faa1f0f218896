package service

import (
	"testing"
	"time"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const testUserID = "auth0|user123"

func newBudgetServiceForTest() (*BudgetService, *testutil.MockBudgetRepository, *testutil.MockAccountRepository, *testutil.MockNotificationRepository) {
	budgetRepo := testutil.NewMockBudgetRepository()
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	notificationRepo := testutil.NewMockNotificationRepository()
	notificationSvc := NewNotificationService(notificationRepo)
	svc := NewBudgetService(testutil.NewMockTxStarter(), budgetRepo, accountRepo, categoryRepo, notificationSvc)
	return svc, budgetRepo, accountRepo, notificationRepo
}

func testAccount(balance string) *domain.Account {
	return &domain.Account{
		ID:      uuid.New(),
		UserID:  testUserID,
		Name:    "Checking",
		Type:    "bank",
		Balance: decimal.RequireFromString(balance),
	}
}

func activeBudget(accountID uuid.UUID, amount, limit, spent string) *domain.Budget {
	return &domain.Budget{
		ID:              uuid.New(),
		UserID:          testUserID,
		Name:            "Groceries",
		Amount:          decimal.RequireFromString(amount),
		Limit:           decimal.RequireFromString(limit),
		CurrentSpending: decimal.RequireFromString(spent),
		AccountID:       accountID,
		StartDate:       time.Now().Add(-24 * time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		IsActive:        true,
	}
}

func TestCreateBudget_DebitsAccount(t *testing.T) {
	svc, _, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("1000")
	accountRepo.AddAccount(account)

	budget, err := svc.CreateBudget(testUserID, CreateBudgetInput{
		Name:      "Groceries",
		Amount:    decimal.RequireFromString("400"),
		Limit:     decimal.RequireFromString("350"),
		AccountID: account.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !budget.Amount.Equal(decimal.RequireFromString("400")) {
		t.Errorf("Expected amount 400, got %s", budget.Amount)
	}
	if !budget.IsActive {
		t.Error("Expected new budget to be active")
	}
	if !account.Balance.Equal(decimal.RequireFromString("600")) {
		t.Errorf("Expected account balance 600 after reservation, got %s", account.Balance)
	}
}

func TestCreateBudget_InsufficientFunds(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("100")
	accountRepo.AddAccount(account)

	_, err := svc.CreateBudget(testUserID, CreateBudgetInput{
		Name:      "Groceries",
		Amount:    decimal.RequireFromString("400"),
		AccountID: account.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().Add(24 * time.Hour),
	})
	if err != domain.ErrInsufficientFunds {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}
	if len(budgetRepo.Budgets) != 0 {
		t.Error("Expected no budget to be created")
	}
}

func TestCreateBudget_Validation(t *testing.T) {
	svc, _, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("1000")
	accountRepo.AddAccount(account)

	cases := []struct {
		name  string
		input CreateBudgetInput
		want  error
	}{
		{
			name: "empty name",
			input: CreateBudgetInput{
				Name:      "   ",
				Amount:    decimal.RequireFromString("100"),
				AccountID: account.ID,
				StartDate: time.Now(),
				EndDate:   time.Now().Add(time.Hour),
			},
			want: domain.ErrNameRequired,
		},
		{
			name: "zero amount",
			input: CreateBudgetInput{
				Name:      "Groceries",
				Amount:    decimal.Zero,
				AccountID: account.ID,
				StartDate: time.Now(),
				EndDate:   time.Now().Add(time.Hour),
			},
			want: domain.ErrAmountInvalid,
		},
		{
			name: "end before start",
			input: CreateBudgetInput{
				Name:      "Groceries",
				Amount:    decimal.RequireFromString("100"),
				AccountID: account.ID,
				StartDate: time.Now(),
				EndDate:   time.Now().Add(-time.Hour),
			},
			want: domain.ErrDateRangeInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateBudget(testUserID, tc.input); err != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateBudget_UnknownCategory(t *testing.T) {
	svc, _, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("1000")
	accountRepo.AddAccount(account)

	missing := uuid.New()
	_, err := svc.CreateBudget(testUserID, CreateBudgetInput{
		Name:       "Groceries",
		Amount:     decimal.RequireFromString("100"),
		AccountID:  account.ID,
		CategoryID: &missing,
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(time.Hour),
	})
	if err != domain.ErrCategoryNotFound {
		t.Fatalf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestRecordSpending_IncrementsSpending(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "350", "0")
	budgetRepo.AddBudget(budget)

	updated, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("300"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.CurrentSpending.Equal(decimal.RequireFromString("300")) {
		t.Errorf("Expected current spending 300, got %s", updated.CurrentSpending)
	}
	if !updated.Remaining().Equal(decimal.RequireFromString("100")) {
		t.Errorf("Expected remaining 100, got %s", updated.Remaining())
	}
	// Spending moves inside the reservation, not against the account
	if !account.Balance.Equal(decimal.RequireFromString("600")) {
		t.Errorf("Expected account balance unchanged at 600, got %s", account.Balance)
	}
}

func TestRecordSpending_ExceedsCeiling(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "350")
	budgetRepo.AddBudget(budget)

	_, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("100"))
	if err != domain.ErrBudgetLimitExceeded {
		t.Fatalf("Expected ErrBudgetLimitExceeded, got %v", err)
	}
	if !budget.CurrentSpending.Equal(decimal.RequireFromString("350")) {
		t.Errorf("Expected spending unchanged at 350, got %s", budget.CurrentSpending)
	}
}

func TestRecordSpending_ExactCeilingAllowed(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "350")
	budgetRepo.AddBudget(budget)

	updated, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("50"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.CurrentSpending.Equal(updated.Amount) {
		t.Errorf("Expected spending to reach amount exactly, got %s of %s", updated.CurrentSpending, updated.Amount)
	}
}

func TestRecordSpending_InactiveBudget(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "0")
	budget.IsActive = false
	budgetRepo.AddBudget(budget)

	_, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("10"))
	if err != domain.ErrBudgetNotFound {
		t.Fatalf("Expected ErrBudgetNotFound for inactive budget, got %v", err)
	}
}

func TestRecordSpending_AlertFiresOnce(t *testing.T) {
	svc, budgetRepo, accountRepo, notificationRepo := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "200", "0")
	budgetRepo.AddBudget(budget)

	// First booking crosses the alert limit
	updated, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("250"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.NotificationsSent {
		t.Error("Expected notificationsSent to be set after crossing the limit")
	}
	if len(notificationRepo.Notifications) != 1 {
		t.Fatalf("Expected one budget alert notification, got %d", len(notificationRepo.Notifications))
	}
	if notificationRepo.Notifications[0].Type != domain.NotificationTypeBudgetAlert {
		t.Errorf("Expected budget_alert notification, got %s", notificationRepo.Notifications[0].Type)
	}

	// Second booking stays above the limit but must not alert again
	if _, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("50")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notificationRepo.Notifications) != 1 {
		t.Errorf("Expected alert to fire once, got %d notifications", len(notificationRepo.Notifications))
	}
}

func TestRecordSpending_NoAlertWithZeroLimit(t *testing.T) {
	svc, budgetRepo, accountRepo, notificationRepo := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "0")
	budgetRepo.AddBudget(budget)

	if _, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("399")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(notificationRepo.Notifications) != 0 {
		t.Errorf("Expected no alert with a zero limit, got %d notifications", len(notificationRepo.Notifications))
	}
}

func TestReverseSpending_ClampsAtZero(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "50")
	budgetRepo.AddBudget(budget)

	updated, err := svc.ReverseSpendingTx(nil, testUserID, budget.ID, decimal.RequireFromString("80"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.CurrentSpending.IsZero() {
		t.Errorf("Expected spending clamped at zero, got %s", updated.CurrentSpending)
	}
}

func TestReverseSpending_AllowedOnInactiveBudget(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "100")
	budget.IsActive = false
	budgetRepo.AddBudget(budget)

	updated, err := svc.ReverseSpendingTx(nil, testUserID, budget.ID, decimal.RequireFromString("60"))
	if err != nil {
		t.Fatalf("Expected reversal on inactive budget to succeed, got %v", err)
	}
	if !updated.CurrentSpending.Equal(decimal.RequireFromString("40")) {
		t.Errorf("Expected spending 40, got %s", updated.CurrentSpending)
	}
}

func TestUpdateBudget_RaiseAmountDebitsAccount(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "100")
	budgetRepo.AddBudget(budget)

	newAmount := decimal.RequireFromString("500")
	updated, err := svc.UpdateBudget(testUserID, budget.ID, UpdateBudgetInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.Amount.Equal(newAmount) {
		t.Errorf("Expected amount 500, got %s", updated.Amount)
	}
	if !account.Balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected account debited to 500, got %s", account.Balance)
	}
}

func TestUpdateBudget_LowerAmountRefundsAccount(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "100")
	budgetRepo.AddBudget(budget)

	newAmount := decimal.RequireFromString("200")
	if _, err := svc.UpdateBudget(testUserID, budget.ID, UpdateBudgetInput{Amount: &newAmount}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("800")) {
		t.Errorf("Expected account credited to 800, got %s", account.Balance)
	}
}

func TestUpdateBudget_AmountBelowSpending(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "300")
	budgetRepo.AddBudget(budget)

	newAmount := decimal.RequireFromString("250")
	_, err := svc.UpdateBudget(testUserID, budget.ID, UpdateBudgetInput{Amount: &newAmount})
	if err != domain.ErrAmountBelowSpending {
		t.Fatalf("Expected ErrAmountBelowSpending, got %v", err)
	}
}

func TestUpdateBudget_Inactive(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "0")
	budget.IsActive = false
	budgetRepo.AddBudget(budget)

	name := "Renamed"
	_, err := svc.UpdateBudget(testUserID, budget.ID, UpdateBudgetInput{Name: &name})
	if err != domain.ErrBudgetInactive {
		t.Fatalf("Expected ErrBudgetInactive, got %v", err)
	}
}

func TestExpireBudgets_RefundsRemainder(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "300")
	budget.EndDate = time.Now().Add(-time.Hour)
	budgetRepo.AddBudget(budget)

	publisher := &testutil.MockEventPublisher{}
	svc.SetEventPublisher(publisher)

	expired, err := svc.ExpireBudgets(testUserID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("Expected one expired budget, got %d", len(expired))
	}
	if budget.IsActive {
		t.Error("Expected budget deactivated")
	}
	if !account.Balance.Equal(decimal.RequireFromString("700")) {
		t.Errorf("Expected 100 refunded for balance 700, got %s", account.Balance)
	}
	if len(publisher.Events) != 1 || publisher.Events[0].Event.Type != "budget.expired" {
		t.Errorf("Expected one budget.expired event, got %v", publisher.Events)
	}

	// Second run picks up nothing
	expired, err = svc.ExpireBudgets(testUserID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(expired) != 0 {
		t.Errorf("Expected no budgets on second run, got %d", len(expired))
	}
	if !account.Balance.Equal(decimal.RequireFromString("700")) {
		t.Errorf("Expected balance unchanged at 700, got %s", account.Balance)
	}
}

func TestDeleteBudget_RefundsRemainder(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("600")
	accountRepo.AddAccount(account)
	budget := activeBudget(account.ID, "400", "0", "250")
	budgetRepo.AddBudget(budget)

	if err := svc.DeleteBudget(testUserID, budget.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if budget.IsActive {
		t.Error("Expected budget deactivated")
	}
	if !account.Balance.Equal(decimal.RequireFromString("750")) {
		t.Errorf("Expected 150 refunded for balance 750, got %s", account.Balance)
	}

	// Deleting again is a no-op
	if err := svc.DeleteBudget(testUserID, budget.ID); err != nil {
		t.Fatalf("Expected idempotent delete, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("750")) {
		t.Errorf("Expected no double refund, balance 750, got %s", account.Balance)
	}
}

// Full lifecycle: 1000 in the account, a 400 budget and a 300 expense leave
// 600 in the account and 100 to refund at expiry, restoring 700.
func TestBudgetLifecycle_ConservationOfFunds(t *testing.T) {
	svc, budgetRepo, accountRepo, _ := newBudgetServiceForTest()
	account := testAccount("1000")
	accountRepo.AddAccount(account)

	budget, err := svc.CreateBudget(testUserID, CreateBudgetInput{
		Name:      "Monthly",
		Amount:    decimal.RequireFromString("400"),
		AccountID: account.ID,
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("600")) {
		t.Fatalf("Expected balance 600 after reservation, got %s", account.Balance)
	}

	if _, err := svc.RecordSpending(testUserID, budget.ID, decimal.RequireFromString("300")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	budgetRepo.Budgets[budget.ID].EndDate = time.Now().Add(-time.Minute)
	if _, err := svc.ExpireBudgets(testUserID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.RequireFromString("700")) {
		t.Errorf("Expected final balance 700, got %s", account.Balance)
	}
}
