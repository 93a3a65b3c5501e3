package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category classifies transactions. Categories do not own balances; a
// category's type must match the type of any transaction referencing it,
// which the transaction service validates on create and update.
type Category struct {
	Base
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Icon        string       `gorm:"not null;default:'circle'" json:"icon"`
	BudgetLimit *int64       `gorm:"type:bigint" json:"budget_limit,omitempty"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
