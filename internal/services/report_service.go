package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/money"
)

// reportService provides the aggregation queries dashboards consume. It
// only ever reads the ledger; all numbers it reports are derived from the
// same rows the lifecycle manager maintains.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// monthWindow returns the first and last instant of now's calendar month.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// GetSummary returns the dashboard headline numbers: total balance across
// active wallets and the current month's income and expense totals.
func (s *reportService) GetSummary(now time.Time) (*Summary, error) {
	var totalBalance int64
	if err := s.db.Model(&models.Wallet{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&totalBalance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthWindow(now)

	sumByType := func(t models.TransactionType) (int64, error) {
		var total int64
		err := s.db.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("type = ? AND date BETWEEN ? AND ?", t, start, end).
			Scan(&total).Error
		if err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return total, nil
	}

	income, err := sumByType(models.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := sumByType(models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalBalance: totalBalance,
		MonthIncome:  income,
		MonthExpense: expense,
	}, nil
}

// GetDailyExpenses returns a per-day expense series for now's month,
// including zero entries for days without spending.
func (s *reportService) GetDailyExpenses(now time.Time) ([]DayTotal, error) {
	start, end := monthWindow(now)

	var rows []models.Transaction
	if err := s.db.
		Select("date, amount").
		Where("type = ? AND date BETWEEN ? AND ?", models.TransactionTypeExpense, start, end).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	daysInMonth := end.Day()
	totals := make([]DayTotal, daysInMonth)
	for i := range totals {
		totals[i].Day = i + 1
	}
	for _, row := range rows {
		totals[row.Date.Day()-1].Total += row.Amount
	}
	return totals, nil
}

// GetCategoryBreakdown returns expense totals per category within the
// window, largest first. Transactions without a category are grouped under
// "Uncategorized".
func (s *reportService) GetCategoryBreakdown(from, to time.Time) ([]CategoryTotal, error) {
	var breakdown []CategoryTotal
	err := s.db.Table("transactions").
		Select("COALESCE(categories.name, 'Uncategorized') AS name, SUM(transactions.amount) AS total").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.type = ? AND transactions.date BETWEEN ? AND ?", models.TransactionTypeExpense, from, to).
		Group("COALESCE(categories.name, 'Uncategorized')").
		Order("total DESC").
		Scan(&breakdown).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if breakdown == nil {
		breakdown = []CategoryTotal{}
	}
	return breakdown, nil
}

// GetMonthlyTrend returns income vs expense totals for the last n calendar
// months, oldest first. Bucketing happens in Go so the query stays portable
// across postgres and the sqlite test databases.
func (s *reportService) GetMonthlyTrend(now time.Time, n int) ([]MonthTotal, error) {
	if n <= 0 {
		n = 6
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(n - 1), 0)
	_, end := monthWindow(now)

	var rows []models.Transaction
	if err := s.db.
		Select("date, type, amount").
		Where("type IN ? AND date BETWEEN ? AND ?",
			[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}, start, end).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	trend := make([]MonthTotal, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		trend[i].Month = key
		index[key] = i
	}

	for _, row := range rows {
		i, ok := index[row.Date.Format("2006-01")]
		if !ok {
			continue
		}
		switch row.Type {
		case models.TransactionTypeIncome:
			trend[i].Income += row.Amount
		case models.TransactionTypeExpense:
			trend[i].Expense += row.Amount
		}
	}
	return trend, nil
}

// GetBudgetProgress returns month-to-date spending against a category's
// budget limit.
func (s *reportService) GetBudgetProgress(categoryID string, now time.Time) (*BudgetProgress, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.BudgetLimit == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category has no budget limit")
	}

	start, end := monthWindow(now)

	var spent int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("category_id = ? AND type = ? AND date BETWEEN ? AND ?",
			categoryID, models.TransactionTypeExpense, start, end).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budgeted := *category.BudgetLimit
	var percentage float64
	if budgeted > 0 {
		percentage = float64(spent) / float64(budgeted) * 100
	}

	return &BudgetProgress{
		CategoryID: categoryID,
		Budgeted:   budgeted,
		Spent:      spent,
		Remaining:  budgeted - spent,
		Percentage: percentage,
	}, nil
}

// ExportCSV renders every transaction in the window as CSV, newest first,
// with columns Date, Type, Category, Amount, Wallet, Note. Amounts are
// formatted as fixed two-decimal strings.
func (s *reportService) ExportCSV(from, to time.Time) (string, error) {
	var transactions []models.Transaction
	if err := s.db.
		Preload("Wallet").
		Preload("Category").
		Where("date BETWEEN ? AND ?", from, to).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Type", "Category", "Amount", "Wallet", "Note"}); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range transactions {
		categoryName := "Uncategorized"
		if t.Category != nil {
			categoryName = t.Category.Name
		} else if t.Type == models.TransactionTypeTransfer {
			categoryName = "Transfer"
		}

		walletName := "Unknown"
		if t.Wallet.Name != "" {
			walletName = t.Wallet.Name
		}

		record := []string{
			t.Date.Format("2006-01-02"),
			string(t.Type),
			categoryName,
			money.FormatCents(t.Amount),
			walletName,
			t.Note,
		}
		if err := w.Write(record); err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.String(), nil
}
