package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryTxType string

const (
	TxInitial    InventoryTxType = "initial"
	TxSale       InventoryTxType = "sale"
	TxReturn     InventoryTxType = "return"
	TxAdjustment InventoryTxType = "adjustment"
)

// InventoryTransaction is an append-only ledger entry recording a signed
// stock delta. Rows are never updated or deleted; the sum of a product's
// deltas always equals stock minus initial stock.
type InventoryTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"` // signed delta
	Type      InventoryTxType `gorm:"type:varchar(20);not null" json:"type"`
	Reference string          `gorm:"type:varchar(255)" json:"reference,omitempty"` // e.g. "order:<number>"
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate generates the UUID on insert.
func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
