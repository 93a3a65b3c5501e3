package services

import (
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateWallet(t *testing.T) {
	t.Run("creates_wallet_with_opening_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)

		wallet, err := walletSvc.CreateWallet("Checking", models.WalletTypeBank, 50000, "USD")
		testutil.AssertNoError(t, err)

		if wallet.ID == "" {
			t.Fatal("expected non-empty wallet ID")
		}
		testutil.AssertBalance(t, wallet.Balance, 50000)
		if !wallet.IsActive {
			t.Error("expected new wallet to be active")
		}
	})

	t.Run("currency_defaults_to_thb", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)

		wallet, err := walletSvc.CreateWallet("Cash", models.WalletTypeCash, 0, "")
		testutil.AssertNoError(t, err)
		if wallet.Currency != "THB" {
			t.Errorf("expected THB, got %s", wallet.Currency)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)

		_, err := walletSvc.CreateWallet("", models.WalletTypeCash, 0, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestApplyBalanceDelta(t *testing.T) {
	t.Run("positive_and_negative_deltas", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 1000)

		testutil.AssertNoError(t, walletSvc.ApplyBalanceDelta(db, wallet.ID, 500))
		testutil.AssertNoError(t, walletSvc.ApplyBalanceDelta(db, wallet.ID, -300))

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 1200)
	})

	t.Run("delta_may_drive_balance_negative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 100)

		testutil.AssertNoError(t, walletSvc.ApplyBalanceDelta(db, wallet.ID, -500))

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, -400)
	})

	t.Run("missing_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)

		err := walletSvc.ApplyBalanceDelta(db, "01890000-0000-7000-8000-000000000000", 100)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestGetWallets(t *testing.T) {
	t.Run("excludes_inactive_wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		testutil.CreateTestWallet(t, db)
		inactive := testutil.CreateTestWallet(t, db)

		falseVal := false
		_, err := walletSvc.UpdateWallet(inactive.ID, WalletUpdateFields{IsActive: &falseVal})
		testutil.AssertNoError(t, err)

		result, err := walletSvc.GetWallets(pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 active wallet, got %d", result.TotalItems)
		}
	})
}

func TestUpdateWallet(t *testing.T) {
	t.Run("renames_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		wallet := testutil.CreateTestWallet(t, db)

		name := "Renamed"
		updated, err := walletSvc.UpdateWallet(wallet.ID, WalletUpdateFields{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected Renamed, got %s", updated.Name)
		}
	})

	t.Run("missing_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)

		name := "X"
		_, err := walletSvc.UpdateWallet("01890000-0000-7000-8000-000000000000", WalletUpdateFields{Name: &name})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestDeleteWallet(t *testing.T) {
	t.Run("removes_transactions_and_rules", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)
		testutil.CreateTestRule(t, db, wallet.ID, 999, time.Now())

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   1000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, walletSvc.DeleteWallet(wallet.ID))

		var txCount, ruleCount int64
		db.Model(&models.Transaction{}).Where("wallet_id = ?", wallet.ID).Count(&txCount)
		db.Model(&models.RecurringRule{}).Where("wallet_id = ?", wallet.ID).Count(&ruleCount)
		if txCount != 0 || ruleCount != 0 {
			t.Errorf("expected all owned rows removed, got %d transactions, %d rules", txCount, ruleCount)
		}

		_, err = walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})

	t.Run("inbound_transfer_legs_lose_destination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		source := testutil.CreateTestWalletWithBalance(t, db, 10000)
		destination := testutil.CreateTestWalletWithBalance(t, db, 0)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           source.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             3000,
			TransferToWalletID: &destination.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, walletSvc.DeleteWallet(destination.ID))

		var reloaded models.Transaction
		testutil.AssertNoError(t, db.Where("id = ?", tx.ID).First(&reloaded).Error)
		if reloaded.TransferToWalletID != nil {
			t.Error("expected transfer destination to be cleared")
		}
	})
}
