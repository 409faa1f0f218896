package service

import (
	"errors"
	"strings"

	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/google/uuid"
)

// CategoryService handles category tree business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput carries the fields for creating a category
type CreateCategoryInput struct {
	Name        string
	ParentID    *uuid.UUID
	Type        domain.CategoryType
	Description *string
	IsActive    *bool
}

// CreateCategory creates a category after validating the name, the type and
// the parent. Name uniqueness is scoped to (user, parent): two siblings may
// not share a name but cousins may.
func (s *CategoryService) CreateCategory(userID string, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidCategoryType(input.Type) {
		return nil, domain.ErrInvalidType
	}

	if input.ParentID != nil {
		exists, err := s.categoryRepo.Exists(userID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrParentNotFound
		}
	}

	existing, err := s.categoryRepo.GetByName(userID, name, input.ParentID)
	if err != nil && !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCategoryNameTaken
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	return s.categoryRepo.Create(&domain.Category{
		UserID:      userID,
		Name:        name,
		ParentID:    input.ParentID,
		Type:        input.Type,
		Description: input.Description,
		IsActive:    isActive,
	})
}

// GetCategories retrieves all categories for a user, sorted by name
func (s *CategoryService) GetCategories(userID string) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(userID)
}

// GetCategoryByID retrieves a single category
func (s *CategoryService) GetCategoryByID(userID string, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(userID, id)
}

// UpdateCategoryInput carries the updatable category fields; nil means
// "leave unchanged". SetParentNil moves the category to the top level.
type UpdateCategoryInput struct {
	Name         *string
	ParentID     *uuid.UUID
	SetParentNil bool
	Type         *domain.CategoryType
	Description  *string
	IsActive     *bool
}

// UpdateCategory updates a category's fields
func (s *CategoryService) UpdateCategory(userID string, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if input.SetParentNil {
		category.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, domain.ErrCategorySelfParent
		}
		exists, err := s.categoryRepo.Exists(userID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrParentNotFound
		}
		category.ParentID = input.ParentID
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxCategoryNameLength {
			return nil, domain.ErrNameTooLong
		}
		category.Name = name
	}
	if input.Type != nil {
		if !domain.ValidCategoryType(*input.Type) {
			return nil, domain.ErrInvalidType
		}
		category.Type = *input.Type
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	// Re-check sibling uniqueness against the final (name, parent) pair
	existing, err := s.categoryRepo.GetByName(userID, category.Name, category.ParentID)
	if err != nil && !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, domain.ErrCategoryNameTaken
	}

	return s.categoryRepo.Update(category)
}

// DeleteCategory removes a category. A category with subcategories cannot
// be deleted; the children must be moved or removed first.
func (s *CategoryService) DeleteCategory(userID string, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(userID, id); err != nil {
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(userID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrCategoryHasChildren
	}

	return s.categoryRepo.Delete(userID, id)
}
