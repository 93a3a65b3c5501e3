package models

import "time"

// Frequency represents how often a recurring rule fires
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurringRule materializes a subscription-style expense each time its
// NextDueDate comes due. The scheduler advances NextDueDate by exactly one
// period per scan in the same atomic unit that inserts the transaction, so a
// retried scan cannot double-fire.
type RecurringRule struct {
	Base
	WalletID    string    `gorm:"type:uuid;not null" json:"wallet_id"`
	CategoryID  *string   `gorm:"type:uuid" json:"category_id,omitempty"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Frequency   Frequency `gorm:"not null" json:"frequency"`
	NextDueDate time.Time `gorm:"not null;index" json:"next_due_date"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Wallet   Wallet    `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
