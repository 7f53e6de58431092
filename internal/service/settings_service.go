package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-pos-backoffice/internal/apperr"
	"go-pos-backoffice/internal/model"
	"go-pos-backoffice/internal/repository"
	"go-pos-backoffice/pkg/validator"
)

type SettingsService interface {
	GetSettings() (*model.Settings, error)
	UpdateSettings(req *UpdateSettingsRequest, actingUser uuid.UUID) (*model.Settings, error)
}

type UpdateSettingsRequest struct {
	StoreName      string          `json:"store_name" validate:"required"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	TaxEnabled     bool            `json:"tax_enabled"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	ReceiptFooter  string          `json:"receipt_footer"`
	LowStockAlerts bool            `json:"low_stock_alerts"`
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	log          *zap.Logger
}

func NewSettingsService(settingsRepo repository.SettingsRepository, log *zap.Logger) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, log: log}
}

func (s *settingsService) GetSettings() (*model.Settings, error) {
	return s.settingsRepo.Get()
}

func (s *settingsService) UpdateSettings(req *UpdateSettingsRequest, actingUser uuid.UUID) (*model.Settings, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(errs[0].FailedField, "failed on tag '"+errs[0].Tag+"'")
	}
	if req.TaxRatePercent.IsNegative() || req.TaxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.NewValidation("tax_rate_percent", "must be between 0 and 100")
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	settings.StoreName = req.StoreName
	settings.Address = req.Address
	settings.Phone = req.Phone
	settings.Currency = req.Currency
	settings.TaxEnabled = req.TaxEnabled
	settings.TaxRatePercent = req.TaxRatePercent
	settings.ReceiptFooter = req.ReceiptFooter
	settings.LowStockAlerts = req.LowStockAlerts
	settings.UpdatedBy = actingUser.String()

	if err := s.settingsRepo.Update(settings); err != nil {
		return nil, err
	}

	// Tax applies per order at creation time; existing orders keep the rate
	// they were priced with.
	s.log.Info("settings updated",
		zap.Bool("tax_enabled", settings.TaxEnabled),
		zap.String("tax_rate_percent", settings.TaxRatePercent.StringFixed(2)))
	return settings, nil
}
