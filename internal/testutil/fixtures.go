package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestWallet creates a cash wallet with zero balance.
func CreateTestWallet(t *testing.T, db *gorm.DB) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, 0)
}

// CreateTestWalletWithBalance creates a cash wallet with the given balance (in cents).
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, balance int64) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		Name:     fmt.Sprintf("Test Wallet %d", nextID()),
		Type:     models.WalletTypeCash,
		Balance:  balance,
		Currency: "THB",
		IsActive: true,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name: fmt.Sprintf("Test Category %d", nextID()),
		Type: categoryType,
		Icon: "circle",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestCategoryWithBudget creates an expense category with a budget limit (in cents).
func CreateTestCategoryWithBudget(t *testing.T, db *gorm.DB, budgetLimit int64) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:        fmt.Sprintf("Test Category %d", nextID()),
		Type:        models.CategoryTypeExpense,
		Icon:        "circle",
		BudgetLimit: &budgetLimit,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction row of the given type and amount
// (in cents) without applying balance effects. Use the transaction service
// when effects should be applied.
func CreateTestTransaction(t *testing.T, db *gorm.DB, walletID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		WalletID: walletID,
		Type:     txType,
		Amount:   amount,
		Date:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRule creates an active monthly recurring rule due at the given date.
func CreateTestRule(t *testing.T, db *gorm.DB, walletID string, amount int64, nextDueDate time.Time) *models.RecurringRule {
	t.Helper()

	rule := &models.RecurringRule{
		WalletID:    walletID,
		Amount:      amount,
		Frequency:   models.FrequencyMonthly,
		NextDueDate: nextDueDate,
		IsActive:    true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}
