package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction represents a ledger entry. Amount is always positive (cents);
// direction is derived from Type. TransferToWalletID is set iff
// Type == transfer and must differ from WalletID.
type Transaction struct {
	Base
	WalletID   string          `gorm:"type:uuid;not null" json:"wallet_id"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type       TransactionType `gorm:"not null" json:"type"`
	Amount     int64           `gorm:"type:bigint;not null" json:"amount"`
	Date       time.Time       `gorm:"not null" json:"date"`
	Note       string          `json:"note"`

	// For transfers
	TransferToWalletID *string `gorm:"type:uuid" json:"transfer_to_wallet_id,omitempty"`

	// Relationships
	Wallet           Wallet    `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	TransferToWallet *Wallet   `gorm:"foreignKey:TransferToWalletID" json:"transfer_to_wallet,omitempty"`
	Category         *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
