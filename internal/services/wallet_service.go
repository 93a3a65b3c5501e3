package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// walletService handles wallet-related business logic.
type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

// CreateWallet creates a new wallet with the given opening balance (in cents).
func (s *walletService) CreateWallet(name string, walletType models.WalletType, initialBalance int64, currency string) (*models.Wallet, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}

	if currency == "" {
		currency = "THB"
	}

	wallet := &models.Wallet{
		Name:     name,
		Type:     walletType,
		Balance:  initialBalance,
		Currency: currency,
		IsActive: true,
	}

	if err := s.db.Create(wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return wallet, nil
}

// GetWallets retrieves a paginated list of active wallets.
func (s *walletService) GetWallets(page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Wallet{}).Where("is_active = ?", true)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var wallets []models.Wallet
	if err := base.Scopes(pagination.Paginate(page)).Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(wallets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWalletByID retrieves a wallet by ID
func (s *walletService) GetWalletByID(walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("id = ?", walletID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// UpdateWallet updates an existing wallet's mutable fields. Balance is not
// one of them: it only moves through ApplyBalanceDelta.
func (s *walletService) UpdateWallet(walletID string, fields WalletUpdateFields) (*models.Wallet, error) {
	wallet, err := s.GetWalletByID(walletID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(wallet).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", wallet.ID).First(wallet).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return wallet, nil
}

// DeleteWallet removes a wallet together with its transactions and recurring
// rules. A transaction without its wallet is meaningless, so history goes
// with the wallet. Inbound transfer legs from other wallets keep their row
// but lose the destination reference; no balances are recomputed.
func (s *walletService) DeleteWallet(walletID string) error {
	wallet, err := s.GetWalletByID(walletID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wallet_id = ?", walletID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.Transaction{}).
			Where("transfer_to_wallet_id = ?", walletID).
			Update("transfer_to_wallet_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("wallet_id = ?", walletID).Delete(&models.RecurringRule{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	return err
}

// ApplyBalanceDelta adds delta (positive or negative cents) to a wallet's
// stored balance as a single UPDATE, and bumps updated_at. It must run on
// the caller's transaction handle so that sibling mutations (both legs of a
// transfer, revert+reapply on update) commit or roll back together.
func (s *walletService) ApplyBalanceDelta(tx *gorm.DB, walletID string, delta int64) error {
	res := tx.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}
