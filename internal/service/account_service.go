package service

import (
	"errors"
	"strings"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService handles account ledger business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountInput carries the fields for creating an account
type CreateAccountInput struct {
	Name    string
	Type    string
	Balance decimal.Decimal
}

// CreateAccount creates an account after validating the name and checking
// per-user uniqueness
func (s *AccountService) CreateAccount(userID string, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Balance.IsNegative() {
		return nil, domain.ErrAmountInvalid
	}

	// Friendlier error than waiting for the unique index
	existing, err := s.accountRepo.GetByName(userID, name)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAccountNameTaken
	}

	return s.accountRepo.Create(&domain.Account{
		UserID:  userID,
		Name:    name,
		Type:    input.Type,
		Balance: input.Balance,
	})
}

// GetAccounts retrieves all accounts for a user, sorted by name
func (s *AccountService) GetAccounts(userID string) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByUser(userID)
}

// GetAccountByID retrieves a single account
func (s *AccountService) GetAccountByID(userID string, id uuid.UUID) (*domain.Account, error) {
	return s.accountRepo.GetByID(userID, id)
}

// UpdateAccountInput carries the updatable account fields; nil means
// "leave unchanged"
type UpdateAccountInput struct {
	Name *string
	Type *string
}

// UpdateAccount updates an account's name and/or type
func (s *AccountService) UpdateAccount(userID string, id uuid.UUID, input UpdateAccountInput) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxAccountNameLength {
			return nil, domain.ErrNameTooLong
		}
		if name != account.Name {
			existing, err := s.accountRepo.GetByName(userID, name)
			if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
				return nil, err
			}
			if existing != nil {
				return nil, domain.ErrAccountNameTaken
			}
		}
		account.Name = name
	}
	if input.Type != nil {
		account.Type = *input.Type
	}

	return s.accountRepo.Update(account)
}

// DeleteAccount removes an account. Deletion is refused while active budgets,
// transactions or incomes still reference the account: deleting it would
// orphan their balance bookkeeping.
func (s *AccountService) DeleteAccount(userID string, id uuid.UUID) error {
	if _, err := s.accountRepo.GetByID(userID, id); err != nil {
		return err
	}

	referenced, err := s.accountRepo.HasReferences(userID, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrAccountInUse
	}

	return s.accountRepo.Delete(userID, id)
}
