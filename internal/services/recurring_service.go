package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/logger"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// recurringNote is the note stamped on every materialized transaction.
const recurringNote = "Recurring Subscription"

// recurringService manages recurring rules and the scheduler pass that
// materializes due rules into expense transactions.
type recurringService struct {
	db            *gorm.DB
	walletService WalletServicer
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, walletService WalletServicer) RecurringServicer {
	return &recurringService{
		db:            db,
		walletService: walletService,
	}
}

// CreateRule creates a new recurring rule. Rules materialize expense
// transactions, so a category, when given, must be an expense category.
func (s *recurringService) CreateRule(input RuleInput) (*models.RecurringRule, error) {
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.WalletID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet ID is required")
	}
	if input.NextDueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next due date is required")
	}
	switch input.Frequency {
	case models.FrequencyMonthly, models.FrequencyYearly:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "frequency must be monthly or yearly")
	}

	var count int64
	if err := s.db.Model(&models.Wallet{}).Where("id = ?", input.WalletID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrWalletNotFound
	}

	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ?", *input.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Type != models.CategoryTypeExpense {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
	}

	rule := &models.RecurringRule{
		WalletID:    input.WalletID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Frequency:   input.Frequency,
		NextDueDate: input.NextDueDate,
		IsActive:    true,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return rule, nil
}

// GetRules retrieves a paginated list of recurring rules.
func (s *recurringService) GetRules(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringRule], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.RecurringRule{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringRule
	if err := base.Scopes(pagination.Paginate(page)).Order("next_due_date").Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRuleByID retrieves a recurring rule by ID
func (s *recurringService) GetRuleByID(ruleID string) (*models.RecurringRule, error) {
	var rule models.RecurringRule
	if err := s.db.Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// SetRuleActive pauses or reactivates a rule. Paused rules are excluded
// from scans; reactivating does not backfill missed periods.
func (s *recurringService) SetRuleActive(ruleID string, active bool) (*models.RecurringRule, error) {
	rule, err := s.GetRuleByID(ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(rule).Update("is_active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rule.IsActive = active
	return rule, nil
}

// DeleteRule removes a recurring rule. Transactions it already materialized
// are ordinary ledger entries and stay untouched.
func (s *recurringService) DeleteRule(ruleID string) error {
	rule, err := s.GetRuleByID(ruleID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RunDueRules is the scheduler pass: it finds every active rule with
// next_due_date <= now and fires each one in its own atomic unit. A rule
// that is several periods overdue fires once per scan, not once per missed
// period. One rule's failure is logged and skipped; it never aborts the
// scan. Because the due-date advance commits together with the inserted
// transaction, a retried scan finds the rule no longer due and cannot
// double-fire it.
func (s *recurringService) RunDueRules(now time.Time) (*ScanResult, error) {
	var rules []models.RecurringRule
	if err := s.db.Where("is_active = ? AND next_due_date <= ?", true, now).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &ScanResult{}
	for i := range rules {
		if err := s.fireRule(&rules[i]); err != nil {
			logger.Get().Errorw("recurring rule failed",
				"rule_id", rules[i].ID,
				"wallet_id", rules[i].WalletID,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Processed++
	}

	if result.Processed > 0 || result.Failed > 0 {
		logger.Get().Infow("recurring scan finished",
			"processed", result.Processed,
			"failed", result.Failed,
		)
	}
	return result, nil
}

// fireRule materializes one due rule: insert the expense transaction, apply
// its balance effect, and advance the due date, all in one atomic unit.
func (s *recurringService) fireRule(rule *models.RecurringRule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		transaction := &models.Transaction{
			WalletID:   rule.WalletID,
			CategoryID: rule.CategoryID,
			Type:       models.TransactionTypeExpense,
			Amount:     rule.Amount,
			Date:       rule.NextDueDate,
			Note:       recurringNote,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.walletService.ApplyBalanceDelta(tx, rule.WalletID, -rule.Amount); err != nil {
			return err
		}

		next := nextOccurrence(rule.NextDueDate, rule.Frequency)
		if err := tx.Model(rule).Update("next_due_date", next).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		rule.NextDueDate = next
		return nil
	})
}

// nextOccurrence advances a due date by exactly one period using
// calendar-aware addition: the day of month is preserved where possible and
// clamped to the last day of shorter months (Jan 31 -> Feb 28/29).
func nextOccurrence(t time.Time, freq models.Frequency) time.Time {
	years, months := 0, 1
	if freq == models.FrequencyYearly {
		years, months = 1, 0
	}

	y, m, d := t.Date()
	firstOfTarget := time.Date(y+years, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
