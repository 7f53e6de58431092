package model

// Privilege represents a permission that can be assigned to users.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "order:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	{Code: "product:adjust_stock", Name: "Adjust Product Stock"},
	{Code: "category:manage", Name: "Manage Categories"},
	// Customers
	{Code: "customer:view", Name: "View Customer"},
	{Code: "customer:manage", Name: "Manage Customers"},
	// Orders and payments
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	{Code: "order:update", Name: "Update Order"},
	{Code: "order:cancel", Name: "Cancel Order"},
	{Code: "payment:create", Name: "Record Payment"},
	// Settings and dashboard
	{Code: "settings:update", Name: "Update Settings"},
	{Code: "dashboard:view", Name: "View Dashboard"},
}
