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

// RecurringHandler handles recurring rule requests and the cron scan endpoint.
type RecurringHandler struct {
	recurringService services.RecurringServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService}
}

// CreateRuleRequest represents the request payload for creating a recurring rule.
// Amount is a fixed-point decimal string. NextDueDate accepts RFC3339 or YYYY-MM-DD.
type CreateRuleRequest struct {
	WalletID    string  `json:"wallet_id" binding:"required"`
	CategoryID  *string `json:"category_id"`
	Amount      string  `json:"amount" binding:"required"`
	Frequency   string  `json:"frequency" binding:"required,frequency"`
	NextDueDate string  `json:"next_due_date" binding:"required"`
}

// SetRuleActiveRequest represents the request payload for activating or pausing a rule
type SetRuleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// RuleResponse represents a recurring rule in the response
type RuleResponse struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"wallet_id"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Amount      string    `json:"amount"`
	Frequency   string    `json:"frequency"`
	NextDueDate time.Time `json:"next_due_date"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRuleResponse(rule *models.RecurringRule) RuleResponse {
	return RuleResponse{
		ID:          rule.ID,
		WalletID:    rule.WalletID,
		CategoryID:  rule.CategoryID,
		Amount:      money.FormatCents(rule.Amount),
		Frequency:   string(rule.Frequency),
		NextDueDate: rule.NextDueDate,
		IsActive:    rule.IsActive,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}

// CreateRule handles the creation of a new recurring rule
// @Summary     Create a recurring rule
// @Description Create a recurring expense rule that fires on its due date during recurring scans
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} RuleResponse "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	nextDueDate, err := parseFlexibleTime(req.NextDueDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid next_due_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	rule, err := h.recurringService.CreateRule(services.RuleInput{
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Frequency:   models.Frequency(req.Frequency),
		NextDueDate: nextDueDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rule": toRuleResponse(rule)})
}

// GetRules handles the retrieval of recurring rules
// @Summary     List recurring rules
// @Tags        recurring
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[RuleResponse] "Paginated rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRules(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetRules(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules := make([]RuleResponse, 0, len(result.Data))
	for i := range result.Data {
		rules = append(rules, toRuleResponse(&result.Data[i]))
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(rules, result.Page, result.PageSize, result.TotalItems))
}

// GetRuleByID handles the retrieval of a specific recurring rule
// @Summary     Get recurring rule by ID
// @Tags        recurring
// @Produce     json
// @Param       id path string true "Rule ID"
// @Success     200 {object} RuleResponse "Rule details"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRuleByID(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRuleByID(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": toRuleResponse(rule)})
}

// SetRuleActive handles pausing or resuming a recurring rule
// @Summary     Pause or resume a recurring rule
// @Description Paused rules are skipped by recurring scans and keep their due date.
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Param       id      path string               true "Rule ID"
// @Param       request body SetRuleActiveRequest true "Desired active state"
// @Success     200 {object} RuleResponse "Updated rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id}/active [put]
func (h *RecurringHandler) SetRuleActive(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetRuleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.SetRuleActive(ruleID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": toRuleResponse(rule)})
}

// DeleteRule handles the deletion of a recurring rule
// @Summary     Delete recurring rule
// @Description Delete a recurring rule. Transactions it already materialized are unaffected.
// @Tags        recurring
// @Produce     json
// @Param       id path string true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRule(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRule(ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted successfully"})
}

// RunRecurringScan handles the cron-triggered recurring scan
// @Summary     Run the recurring scan
// @Description Materialize every active rule whose due date has passed into an expense transaction. Each rule is processed in its own atomic unit; failures are counted and skipped.
// @Tags        cron
// @Produce     json
// @Param       X-Cron-Key header string true "Shared cron secret"
// @Success     200 {object} services.ScanResult "Scan summary"
// @Failure     401 {object} ErrorResponse "Invalid cron key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cron/recurring [post]
func (h *RecurringHandler) RunRecurringScan(c *gin.Context) {
	result, err := h.recurringService.RunDueRules(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
