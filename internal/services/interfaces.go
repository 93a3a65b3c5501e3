package services

import (
	"time"

	"gorm.io/gorm"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// WalletUpdateFields holds optional fields for updating a wallet.
type WalletUpdateFields struct {
	Name     *string
	IsActive *bool
}

// WalletServicer defines the contract for wallet-related business logic.
// ApplyBalanceDelta is the single write path for wallet balances; every
// other component mutates balances through it, inside the caller's
// database transaction.
type WalletServicer interface {
	CreateWallet(name string, walletType models.WalletType, initialBalance int64, currency string) (*models.Wallet, error)
	GetWallets(page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error)
	GetWalletByID(walletID string) (*models.Wallet, error)
	UpdateWallet(walletID string, fields WalletUpdateFields) (*models.Wallet, error)
	DeleteWallet(walletID string) error
	ApplyBalanceDelta(tx *gorm.DB, walletID string, delta int64) error
}

// CategoryUpdateFields holds optional fields for updating a category.
type CategoryUpdateFields struct {
	Name        *string
	Type        *models.CategoryType
	Icon        *string
	BudgetLimit *int64
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(name string, categoryType models.CategoryType, icon string, budgetLimit *int64) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// TransactionInput carries the full field set for creating a transaction.
// Updates use the same shape: an update replaces every field, reverting the
// old balance effects and applying the new ones in one atomic unit.
type TransactionInput struct {
	WalletID           string
	CategoryID         *string
	Type               models.TransactionType
	Amount             int64
	Date               time.Time
	Note               string
	TransferToWalletID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	WalletID   *string
	CategoryID *string
}

// TransactionServicer defines the contract for the transaction lifecycle:
// create, update and delete with correct, reversible balance side-effects.
type TransactionServicer interface {
	CreateTransaction(input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(transactionID string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// RuleInput carries the field set for creating a recurring rule.
type RuleInput struct {
	WalletID    string
	CategoryID  *string
	Amount      int64
	Frequency   models.Frequency
	NextDueDate time.Time
}

// ScanResult reports the outcome of one recurring scan.
type ScanResult struct {
	Processed int `json:"processed_count"`
	Failed    int `json:"failed_count"`
}

// RecurringServicer defines the contract for recurring rule management and
// the scheduler pass that materializes due rules into expense transactions.
type RecurringServicer interface {
	CreateRule(input RuleInput) (*models.RecurringRule, error)
	GetRules(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringRule], error)
	GetRuleByID(ruleID string) (*models.RecurringRule, error)
	SetRuleActive(ruleID string, active bool) (*models.RecurringRule, error)
	DeleteRule(ruleID string) error
	RunDueRules(now time.Time) (*ScanResult, error)
}

// Summary contains the dashboard headline numbers for the current month.
type Summary struct {
	TotalBalance int64 `json:"total_balance"`
	MonthIncome  int64 `json:"month_income"`
	MonthExpense int64 `json:"month_expense"`
}

// DayTotal is one day's expense total within a month.
type DayTotal struct {
	Day   int   `json:"day"`
	Total int64 `json:"total"`
}

// CategoryTotal is one category's expense total within a window.
type CategoryTotal struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// MonthTotal is one month's income and expense totals.
type MonthTotal struct {
	Month   string `json:"month"` // YYYY-MM
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

// BudgetProgress contains month-to-date spending against a category's budget limit.
type BudgetProgress struct {
	CategoryID string  `json:"category_id"`
	Budgeted   int64   `json:"budgeted"`
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// ReportServicer defines the aggregation queries consumed by dashboards.
type ReportServicer interface {
	GetSummary(now time.Time) (*Summary, error)
	GetDailyExpenses(now time.Time) ([]DayTotal, error)
	GetCategoryBreakdown(from, to time.Time) ([]CategoryTotal, error)
	GetMonthlyTrend(now time.Time, months int) ([]MonthTotal, error)
	GetBudgetProgress(categoryID string, now time.Time) (*BudgetProgress, error)
	ExportCSV(from, to time.Time) (string, error)
}
