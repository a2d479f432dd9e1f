package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryService interface {
	ListCategories() ([]model.Category, error)
	ListRootCategories() ([]model.Category, error)
	GetCategoryBySlug(slug string) (*model.Category, error)
	GetChildren(parentID uuid.UUID) ([]model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories() ([]model.Category, error) {
	logger.Debug("Listing categories")

	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) ListRootCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindRoots()
	if err != nil {
		logger.Error("Failed to list root categories", err)
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) GetCategoryBySlug(slug string) (*model.Category, error) {
	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetChildren(parentID uuid.UUID) ([]model.Category, error) {
	if _, err := s.categoryRepo.FindByID(parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return s.categoryRepo.FindChildren(parentID)
}
