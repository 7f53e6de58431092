package model

// Customer is an optional party attached to an order.
type Customer struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone   string `gorm:"type:varchar(20);index" json:"phone"`
	Email   string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address string `gorm:"type:text" json:"address"`
	Notes   string `gorm:"type:text" json:"notes"`

	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
}
