package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/todo-manager/v2/internal/types"
)

// CategoryService handles category-related operations
type CategoryService struct {
	apiClient *ApiClient
}

func NewCategoryService(apiClient *ApiClient) *CategoryService {
	return &CategoryService{apiClient: apiClient}
}

// ListCategories fetches all categories of the authenticated user
func (s *CategoryService) ListCategories(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	if err := s.apiClient.CallAPI(ctx, "/categories", http.MethodGet, nil, &categories, "Failed to fetch categories"); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	if categories == nil {
		categories = []types.Category{}
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, category types.NewCategory) (*types.Category, error) {
	var created types.Category
	if err := s.apiClient.CallAPI(ctx, "/categories", http.MethodPost, category, &created, "Failed to create category"); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &created, nil
}
