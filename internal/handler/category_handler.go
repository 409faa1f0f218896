package handler

import (
	"github.com/finwise-app/finwise-backend/internal/domain"
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/finwise-app/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	ParentID    *string `json:"parentId,omitempty"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdateCategoryRequest represents the update category request body.
// ParentID accepts an empty string to move the category to the top level.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	ParentID    *string `json:"parentId"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// CreateCategory handles POST /add-category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return NewValidationError(c, "Invalid parent id")
		}
		parentID = &id
	}

	category, err := h.categoryService.CreateCategory(userID, service.CreateCategoryInput{
		Name:        req.Name,
		ParentID:    parentID,
		Type:        domain.CategoryType(req.Type),
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return NewDomainError(c, err, "Failed to create category")
	}

	log.Info().Str("user_id", userID).Str("category_id", category.ID.String()).Str("name", category.Name).Msg("Category created")

	return Created(c, "Category created successfully", category)
}

// GetCategories handles GET /get-categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.GetCategories(userID)
	if err != nil {
		return NewDomainError(c, err, "Failed to get categories")
	}

	return OK(c, "Categories retrieved successfully", categories)
}

// GetCategory handles GET /get-category/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id")
	}

	category, err := h.categoryService.GetCategoryByID(userID, id)
	if err != nil {
		return NewDomainError(c, err, "Failed to get category")
	}

	return OK(c, "Category retrieved successfully", category)
}

// UpdateCategory handles PUT /update-categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id")
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	input := service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			input.SetParentNil = true
		} else {
			parentID, err := uuid.Parse(*req.ParentID)
			if err != nil {
				return NewValidationError(c, "Invalid parent id")
			}
			input.ParentID = &parentID
		}
	}
	if req.Type != nil {
		categoryType := domain.CategoryType(*req.Type)
		input.Type = &categoryType
	}

	category, err := h.categoryService.UpdateCategory(userID, id, input)
	if err != nil {
		return NewDomainError(c, err, "Failed to update category")
	}

	return OK(c, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /delete-categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id")
	}

	if err := h.categoryService.DeleteCategory(userID, id); err != nil {
		return NewDomainError(c, err, "Failed to delete category")
	}

	log.Info().Str("user_id", userID).Str("category_id", id.String()).Msg("Category deleted")

	return OK(c, "Category deleted successfully", nil)
}
