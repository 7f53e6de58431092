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

type CustomerService interface {
	CreateCustomer(req *CustomerRequest, actingUser uuid.UUID) (*model.Customer, error)
	UpdateCustomer(id uuid.UUID, req *CustomerRequest, actingUser uuid.UUID) (*model.Customer, error)
	DeleteCustomer(id uuid.UUID) error
	GetAllCustomers(search string) ([]model.Customer, error)
	GetCustomerByID(id uuid.UUID) (*model.Customer, error)
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) CreateCustomer(req *CustomerRequest, actingUser uuid.UUID) (*model.Customer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	customer := &model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	}
	customer.CreatedBy = actingUser.String()
	customer.UpdatedBy = actingUser.String()

	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) UpdateCustomer(id uuid.UUID, req *CustomerRequest, actingUser uuid.UUID) (*model.Customer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}

	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("customer", id)
		}
		return nil, err
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Notes = req.Notes
	customer.UpdatedBy = actingUser.String()

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("customer", id)
		}
		return err
	}
	return s.customerRepo.Delete(id)
}

func (s *customerService) GetAllCustomers(search string) ([]model.Customer, error) {
	return s.customerRepo.FindAll(search)
}

func (s *customerService) GetCustomerByID(id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("customer", id)
		}
		return nil, err
	}
	return customer, nil
}
