package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/money"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// WalletHandler handles wallet-related requests.
type WalletHandler struct {
	walletService      services.WalletServicer
	transactionService services.TransactionServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer, transactionService services.TransactionServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService, transactionService: transactionService}
}

// CreateWalletRequest represents the request payload for creating a wallet.
// Balance is a fixed-point decimal string, e.g. "100.00".
type CreateWalletRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Type     string `json:"type" binding:"required,wallet_type"`
	Balance  string `json:"balance"`
	Currency string `json:"currency" binding:"omitempty,iso4217"`
}

// WalletResponse represents a wallet in the response
type WalletResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toWalletResponse(w *models.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Type:      string(w.Type),
		Balance:   money.FormatCents(w.Balance),
		Currency:  w.Currency,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// CreateWallet handles the creation of a new wallet
// @Summary     Create a wallet
// @Description Create a new wallet with an optional opening balance
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Param       request body CreateWalletRequest true "Wallet details"
// @Success     201 {object} WalletResponse "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var balance int64
	if req.Balance != "" {
		parsed, err := parseAmount(req.Balance)
		if err != nil {
			respondWithError(c, err)
			return
		}
		balance = parsed
	}

	wallet, err := h.walletService.CreateWallet(req.Name, models.WalletType(req.Type), balance, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wallet": toWalletResponse(wallet)})
}

// GetWallets handles the retrieval of all active wallets
// @Summary     List wallets
// @Description Get a paginated list of active wallets
// @Tags        wallets
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[WalletResponse] "Paginated wallets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [get]
func (h *WalletHandler) GetWallets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.walletService.GetWallets(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallets := make([]WalletResponse, 0, len(result.Data))
	for i := range result.Data {
		wallets = append(wallets, toWalletResponse(&result.Data[i]))
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(wallets, result.Page, result.PageSize, result.TotalItems))
}

// GetWalletByID handles the retrieval of a specific wallet
// @Summary     Get wallet by ID
// @Tags        wallets
// @Produce     json
// @Param       id path string true "Wallet ID"
// @Success     200 {object} WalletResponse "Wallet details"
// @Failure     400 {object} ErrorResponse "Invalid wallet ID"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWalletByID(c *gin.Context) {
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWalletByID(walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": toWalletResponse(wallet)})
}

// UpdateWalletRequest represents the request payload for updating a wallet.
type UpdateWalletRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

// UpdateWallet handles updating a wallet's mutable fields
// @Summary     Update wallet
// @Description Update a wallet's name or active flag. Balance cannot be set directly.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Wallet ID"
// @Param       request body UpdateWalletRequest true "Fields to update"
// @Success     200 {object} WalletResponse "Updated wallet"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [put]
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.UpdateWallet(walletID, services.WalletUpdateFields{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": toWalletResponse(wallet)})
}

// DeleteWallet handles the deletion of a wallet
// @Summary     Delete wallet
// @Description Delete a wallet together with its transactions and recurring rules
// @Tags        wallets
// @Produce     json
// @Param       id path string true "Wallet ID"
// @Success     200 {object} MessageResponse "Wallet deleted"
// @Failure     400 {object} ErrorResponse "Invalid wallet ID"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.walletService.DeleteWallet(walletID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet deleted successfully"})
}

// GetWalletTransactions handles the retrieval of a wallet's transactions
// @Summary     Get wallet transactions
// @Description Get a paginated list of transactions for a specific wallet
// @Tags        wallets,transactions
// @Produce     json
// @Param       id        path  string true  "Wallet ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[TransactionResponse] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets/{id}/transactions [get]
func (h *WalletHandler) GetWalletTransactions(c *gin.Context) {
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if _, err := h.walletService.GetWalletByID(walletID); err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetTransactions(page, services.TransactionFilter{WalletID: &walletID})
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions := make([]TransactionResponse, 0, len(result.Data))
	for i := range result.Data {
		transactions = append(transactions, toTransactionResponse(&result.Data[i]))
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(transactions, result.Page, result.PageSize, result.TotalItems))
}
