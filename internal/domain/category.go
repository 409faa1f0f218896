package domain

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeBoth    CategoryType = "both"
)

// ValidCategoryType reports whether t is one of the known category types.
func ValidCategoryType(t CategoryType) bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeBoth:
		return true
	}
	return false
}

// Category is tree structured via ParentID. Name is unique per
// (user, parent); a category with children cannot be deleted.
type Category struct {
	ID          uuid.UUID    `json:"id"`
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	ParentID    *uuid.UUID   `json:"parentId,omitempty"`
	Type        CategoryType `json:"type"`
	Description *string      `json:"description,omitempty"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	ParentName *string `json:"parentName,omitempty"`
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(userID string, id uuid.UUID) (*Category, error)
	GetByName(userID string, name string, parentID *uuid.UUID) (*Category, error)
	GetAllByUser(userID string) ([]*Category, error)
	Update(category *Category) (*Category, error)
	Delete(userID string, id uuid.UUID) error
	HasChildren(userID string, id uuid.UUID) (bool, error)
	Exists(userID string, id uuid.UUID) (bool, error)
}
