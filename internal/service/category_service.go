package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/pkg/validator"
)

var ErrCategoryNameExists = errors.New("category name already exists")

type CategoryService interface {
	CreateCategory(req *CategoryRequest, actingUser uuid.UUID) (*model.Category, error)
	UpdateCategory(id uuid.UUID, req *CategoryRequest, actingUser uuid.UUID) (*model.Category, error)
	DeleteCategory(id uuid.UUID) error
	GetAllCategories() ([]model.Category, error)
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(req *CategoryRequest, actingUser uuid.UUID) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	existing, _ := s.categoryRepo.FindByName(req.Name)
	if existing != nil {
		return nil, ErrCategoryNameExists
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	category.CreatedBy = actingUser.String()
	category.UpdatedBy = actingUser.String()

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(id uuid.UUID, req *CategoryRequest, actingUser uuid.UUID) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("category", id)
		}
		return nil, err
	}

	if req.Name != category.Name {
		existing, _ := s.categoryRepo.FindByName(req.Name)
		if existing != nil {
			return nil, ErrCategoryNameExists
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedBy = actingUser.String()

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("category", id)
		}
		return err
	}
	return s.categoryRepo.Delete(id)
}

func (s *categoryService) GetAllCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}
