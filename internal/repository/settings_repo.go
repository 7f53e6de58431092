package repository

import (
	"errors"

	"go-pos-backoffice/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	// Get returns the singleton settings row, creating defaults on first use.
	Get() (*model.Settings, error)
	Update(settings *model.Settings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db}
}

func (r *settingsRepo) Get() (*model.Settings, error) {
	var settings model.Settings
	err := r.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.Settings{
			StoreName:      "My Store",
			Currency:       "USD",
			TaxEnabled:     false,
			TaxRatePercent: decimal.Zero,
			LowStockAlerts: true,
		}
		settings.CreatedBy = "system"
		settings.UpdatedBy = "system"
		if err := r.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Update(settings *model.Settings) error {
	return r.db.Save(settings).Error
}
