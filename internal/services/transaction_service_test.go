package services

import (
	"testing"
	"time"

	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   5000,
			Note:     "Salary",
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		if tx.Amount != 5000 {
			t.Errorf("expected amount 5000, got %d", tx.Amount)
		}

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 5000)
	})

	t.Run("expense_decreases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Note:     "Lunch",
		})
		testutil.AssertNoError(t, err)

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 7000)
	})

	t.Run("expense_may_overdraw", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 1000)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   2500,
		})
		testutil.AssertNoError(t, err)

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, -1500)
	})

	t.Run("transfer_moves_amount_between_wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		source := testutil.CreateTestWalletWithBalance(t, db, 10000)
		destination := testutil.CreateTestWalletWithBalance(t, db, 5000)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           source.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             3000,
			TransferToWalletID: &destination.ID,
		})
		testutil.AssertNoError(t, err)

		updatedSource, err := walletSvc.GetWalletByID(source.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedSource.Balance, 7000)

		updatedDest, err := walletSvc.GetWalletByID(destination.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedDest.Balance, 8000)
	})

	t.Run("transfer_to_missing_wallet_leaves_source_unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		source := testutil.CreateTestWalletWithBalance(t, db, 10000)
		missing := "01890000-0000-7000-8000-000000000000"

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           source.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             3000,
			TransferToWalletID: &missing,
		})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

		updated, err := walletSvc.GetWalletByID(source.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 10000)

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no transaction rows, got %d", count)
		}
	})

	t.Run("transfer_without_destination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeTransfer,
			Amount:   1000,
		})
		testutil.AssertAppError(t, err, "TRANSFER_DESTINATION_REQUIRED")
	})

	t.Run("transfer_to_same_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           wallet.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             1000,
			TransferToWalletID: &wallet.ID,
		})
		testutil.AssertAppError(t, err, "SAME_WALLET_TRANSFER")
	})

	t.Run("transfer_with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		source := testutil.CreateTestWallet(t, db)
		destination := testutil.CreateTestWallet(t, db)
		category := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           source.ID,
			CategoryID:         &category.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             1000,
			TransferToWalletID: &destination.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("destination_on_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)
		other := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           wallet.ID,
			Type:               models.TransactionTypeIncome,
			Amount:             1000,
			TransferToWalletID: &other.ID,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   0,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   -100,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionType("loan"),
			Amount:   1000,
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("missing_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: "01890000-0000-7000-8000-000000000000",
			Type:     models.TransactionTypeIncome,
			Amount:   1000,
		})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})

	t.Run("missing_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)
		missing := "01890000-0000-7000-8000-000000000000"

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:   wallet.ID,
			CategoryID: &missing,
			Type:       models.TransactionTypeExpense,
			Amount:     1000,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("category_type_mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)
		category := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)

		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:   wallet.ID,
			CategoryID: &category.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     1000,
		})
		testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 0)
	})

	t.Run("date_defaults_to_now", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   1000,
		})
		testutil.AssertNoError(t, err)
		if tx.Date.IsZero() {
			t.Error("expected transaction date to default to now")
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("amount_change_adjusts_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
		})
		testutil.AssertNoError(t, err)

		_, err = txSvc.UpdateTransaction(tx.ID, TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   5000,
		})
		testutil.AssertNoError(t, err)

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 5000)
	})

	t.Run("self_equivalent_update_is_a_net_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Note:     "Groceries",
		})
		testutil.AssertNoError(t, err)

		_, err = txSvc.UpdateTransaction(tx.ID, TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
			Note:     "Groceries",
		})
		testutil.AssertNoError(t, err)

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 7000)
	})

	t.Run("wallet_move_shifts_effect", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		walletA := testutil.CreateTestWalletWithBalance(t, db, 10000)
		walletB := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: walletA.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   2000,
		})
		testutil.AssertNoError(t, err)

		_, err = txSvc.UpdateTransaction(tx.ID, TransactionInput{
			WalletID: walletB.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   2000,
		})
		testutil.AssertNoError(t, err)

		updatedA, err := walletSvc.GetWalletByID(walletA.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedA.Balance, 10000)

		updatedB, err := walletSvc.GetWalletByID(walletB.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedB.Balance, 8000)
	})

	t.Run("type_change_from_income_to_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   4000,
		})
		testutil.AssertNoError(t, err)

		_, err = txSvc.UpdateTransaction(tx.ID, TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   4000,
		})
		testutil.AssertNoError(t, err)

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 6000)
	})

	t.Run("invalid_update_preserves_balances", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
		})
		testutil.AssertNoError(t, err)

		_, err = txSvc.UpdateTransaction(tx.ID, TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   -1,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 7000)
	})

	t.Run("missing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		_, err := txSvc.UpdateTransaction("01890000-0000-7000-8000-000000000000", TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   1000,
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("create_then_delete_restores_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, txSvc.DeleteTransaction(tx.ID))

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 10000)
	})

	t.Run("transfer_delete_restores_both_wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		source := testutil.CreateTestWalletWithBalance(t, db, 10000)
		destination := testutil.CreateTestWalletWithBalance(t, db, 5000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID:           source.ID,
			Type:               models.TransactionTypeTransfer,
			Amount:             3000,
			TransferToWalletID: &destination.ID,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, txSvc.DeleteTransaction(tx.ID))

		updatedSource, err := walletSvc.GetWalletByID(source.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedSource.Balance, 10000)

		updatedDest, err := walletSvc.GetWalletByID(destination.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updatedDest.Balance, 5000)
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWalletWithBalance(t, db, 10000)

		tx, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   3000,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, txSvc.DeleteTransaction(tx.ID))
		testutil.AssertNoError(t, txSvc.DeleteTransaction(tx.ID))

		updated, err := walletSvc.GetWalletByID(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertBalance(t, updated.Balance, 10000)
	})

	t.Run("delete_absent_transaction_succeeds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)

		testutil.AssertNoError(t, txSvc.DeleteTransaction("01890000-0000-7000-8000-000000000000"))
	})
}

func TestGetTransactions(t *testing.T) {
	t.Run("filters_by_wallet_and_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		walletA := testutil.CreateTestWallet(t, db)
		walletB := testutil.CreateTestWallet(t, db)

		for i := 0; i < 3; i++ {
			_, err := txSvc.CreateTransaction(TransactionInput{
				WalletID: walletA.ID,
				Type:     models.TransactionTypeIncome,
				Amount:   1000,
			})
			testutil.AssertNoError(t, err)
		}
		_, err := txSvc.CreateTransaction(TransactionInput{
			WalletID: walletB.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   500,
		})
		testutil.AssertNoError(t, err)

		incomeType := models.TransactionTypeIncome
		result, err := txSvc.GetTransactions(pagination.PageRequest{}, TransactionFilter{
			WalletID: &walletA.ID,
			Type:     &incomeType,
		})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Errorf("expected 3 transactions, got %d", result.TotalItems)
		}
	})

	t.Run("filters_by_date_window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		for _, date := range []time.Time{jan, mar} {
			_, err := txSvc.CreateTransaction(TransactionInput{
				WalletID: wallet.ID,
				Type:     models.TransactionTypeIncome,
				Amount:   1000,
				Date:     date,
			})
			testutil.AssertNoError(t, err)
		}

		from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		result, err := txSvc.GetTransactions(pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 transaction, got %d", result.TotalItems)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		walletSvc := NewWalletService(db)
		txSvc := NewTransactionService(db, walletSvc)
		wallet := testutil.CreateTestWallet(t, db)

		for i := 0; i < 5; i++ {
			_, err := txSvc.CreateTransaction(TransactionInput{
				WalletID: wallet.ID,
				Type:     models.TransactionTypeIncome,
				Amount:   1000,
			})
			testutil.AssertNoError(t, err)
		}

		result, err := txSvc.GetTransactions(pagination.PageRequest{Page: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("missing_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db, NewWalletService(db))

		_, err := txSvc.GetTransactionByID("01890000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
