package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// transactionService handles the transaction lifecycle. Every operation that
// touches wallet balances runs inside a single database transaction: both
// legs of a transfer, and the revert+reapply pair on update, are never
// visible half-applied.
type transactionService struct {
	db            *gorm.DB
	walletService WalletServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, walletService WalletServicer) TransactionServicer {
	return &transactionService{
		db:            db,
		walletService: walletService,
	}
}

// balanceEffect is one signed balance change against one wallet.
type balanceEffect struct {
	walletID string
	delta    int64
}

// balanceEffects computes the signed effect table for a transaction:
//
//	income    +amount on the wallet
//	expense   -amount on the wallet
//	transfer  -amount on the wallet, +amount on the destination
func balanceEffects(t *models.Transaction) []balanceEffect {
	switch t.Type {
	case models.TransactionTypeIncome:
		return []balanceEffect{{t.WalletID, t.Amount}}
	case models.TransactionTypeExpense:
		return []balanceEffect{{t.WalletID, -t.Amount}}
	case models.TransactionTypeTransfer:
		effects := []balanceEffect{{t.WalletID, -t.Amount}}
		if t.TransferToWalletID != nil {
			effects = append(effects, balanceEffect{*t.TransferToWalletID, t.Amount})
		}
		return effects
	}
	return nil
}

// inverseEffects negates an effect table, reverting its balance changes.
func inverseEffects(effects []balanceEffect) []balanceEffect {
	inverted := make([]balanceEffect, len(effects))
	for i, e := range effects {
		inverted[i] = balanceEffect{e.walletID, -e.delta}
	}
	return inverted
}

// applyEffects runs each effect through the balance mutation primitive on
// the given transaction handle.
func (s *transactionService) applyEffects(tx *gorm.DB, effects []balanceEffect) error {
	for _, e := range effects {
		if err := s.walletService.ApplyBalanceDelta(tx, e.walletID, e.delta); err != nil {
			return err
		}
	}
	return nil
}

// validateInput checks the create/update constraints before any balance is
// touched. Reads go through tx so update validation sees the same snapshot
// it will write against.
func (s *transactionService) validateInput(tx *gorm.DB, input TransactionInput) error {
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.WalletID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet ID is required")
	}

	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		if input.TransferToWalletID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "destination wallet is only valid for transfers")
		}
	case models.TransactionTypeTransfer:
		if input.TransferToWalletID == nil || *input.TransferToWalletID == "" {
			return apperrors.ErrTransferDestination
		}
		if *input.TransferToWalletID == input.WalletID {
			return apperrors.ErrSameWalletTransfer
		}
		if input.CategoryID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfers cannot have a category")
		}
	default:
		return apperrors.ErrInvalidTransactionType
	}

	var count int64
	if err := tx.Model(&models.Wallet{}).Where("id = ?", input.WalletID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrWalletNotFound
	}

	if input.TransferToWalletID != nil {
		if err := tx.Model(&models.Wallet{}).Where("id = ?", *input.TransferToWalletID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.WithMessage(apperrors.ErrWalletNotFound, "destination wallet not found")
		}
	}

	if input.CategoryID != nil {
		var category models.Category
		if err := tx.Where("id = ?", *input.CategoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if string(category.Type) != string(input.Type) {
			return apperrors.ErrCategoryTypeMismatch
		}
	}

	return nil
}

// CreateTransaction validates the input, persists the transaction, and
// applies its balance effects, all in one atomic unit. On any failure no
// partial balance mutation is visible.
func (s *transactionService) CreateTransaction(input TransactionInput) (*models.Transaction, error) {
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	transaction := &models.Transaction{
		WalletID:           input.WalletID,
		CategoryID:         input.CategoryID,
		Type:               input.Type,
		Amount:             input.Amount,
		Date:               input.Date,
		Note:               input.Note,
		TransferToWalletID: input.TransferToWalletID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validateInput(tx, input); err != nil {
			return err
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, balanceEffects(transaction))
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// UpdateTransaction replaces a transaction's fields with the given input.
// Within one atomic unit it reverts the original balance effects, validates
// the new input, writes the new field values, and applies the new effects.
// If any step fails, every wallet keeps its pre-update balance exactly.
func (s *transactionService) UpdateTransaction(transactionID string, input TransactionInput) (*models.Transaction, error) {
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	var updated models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Transaction
		if err := tx.Where("id = ?", transactionID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.applyEffects(tx, inverseEffects(balanceEffects(&existing))); err != nil {
			return err
		}

		if err := s.validateInput(tx, input); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"wallet_id":             input.WalletID,
			"category_id":           input.CategoryID,
			"type":                  input.Type,
			"amount":                input.Amount,
			"date":                  input.Date,
			"note":                  input.Note,
			"transfer_to_wallet_id": input.TransferToWalletID,
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updated = existing
		updated.WalletID = input.WalletID
		updated.CategoryID = input.CategoryID
		updated.Type = input.Type
		updated.Amount = input.Amount
		updated.Date = input.Date
		updated.Note = input.Note
		updated.TransferToWalletID = input.TransferToWalletID

		return s.applyEffects(tx, balanceEffects(&updated))
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction reverts a transaction's balance effects and removes the
// record, atomically. Deleting an absent transaction is a no-op success, so
// retried deletes are safe.
func (s *transactionService) DeleteTransaction(transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var transaction models.Transaction
		if err := tx.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.applyEffects(tx, inverseEffects(balanceEffects(&transaction))); err != nil {
			return err
		}

		if err := tx.Delete(&transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetTransactionByID retrieves a transaction by ID
func (s *transactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{})
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.WalletID != nil {
		q = q.Where("wallet_id = ?", *f.WalletID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}
