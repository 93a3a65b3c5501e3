package models

// WalletType represents the kind of wallet
type WalletType string

const (
	WalletTypeCash       WalletType = "cash"
	WalletTypeBank       WalletType = "bank"
	WalletTypeCreditCard WalletType = "credit_card"
	WalletTypeInvestment WalletType = "investment"
)

// Wallet represents a source of funds. Balance is stored in cents and is a
// derived value: at any time it equals the initial balance plus the signed
// effects of every transaction referencing the wallet. It is only ever
// written through walletService.ApplyBalanceDelta.
type Wallet struct {
	Base
	Name     string     `gorm:"not null" json:"name"`
	Type     WalletType `gorm:"not null" json:"type"`
	Balance  int64      `gorm:"type:bigint;not null;default:0" json:"balance"`
	Currency string     `gorm:"not null;default:'THB'" json:"currency"`
	IsActive bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}
