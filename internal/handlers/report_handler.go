package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/money"
	"moneta/internal/services"
)

// ReportHandler handles aggregation and export requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SummaryResponse contains the dashboard headline numbers as decimal strings.
type SummaryResponse struct {
	TotalBalance string `json:"total_balance"`
	MonthIncome  string `json:"month_income"`
	MonthExpense string `json:"month_expense"`
}

// DayTotalResponse is one day's expense total within the current month
type DayTotalResponse struct {
	Day   int    `json:"day"`
	Total string `json:"total"`
}

// CategoryTotalResponse is one category's expense total within a window
type CategoryTotalResponse struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

// MonthTotalResponse is one month's income and expense totals
type MonthTotalResponse struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// BudgetProgressResponse contains month-to-date spending against a budget limit
type BudgetProgressResponse struct {
	CategoryID string  `json:"category_id"`
	Budgeted   string  `json:"budgeted"`
	Spent      string  `json:"spent"`
	Remaining  string  `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// GetSummary handles the dashboard summary request
// @Summary     Dashboard summary
// @Description Total balance across active wallets plus current-month income and expense totals
// @Tags        reports
// @Produce     json
// @Success     200 {object} SummaryResponse "Summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	summary, err := h.reportService.GetSummary(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": SummaryResponse{
		TotalBalance: money.FormatCents(summary.TotalBalance),
		MonthIncome:  money.FormatCents(summary.MonthIncome),
		MonthExpense: money.FormatCents(summary.MonthExpense),
	}})
}

// GetDailyExpenses handles the daily expense breakdown request
// @Summary     Daily expenses
// @Description Per-day expense totals for the current month, zero-filled for days without spending
// @Tags        reports
// @Produce     json
// @Success     200 {object} map[string][]DayTotalResponse "Daily totals"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/daily [get]
func (h *ReportHandler) GetDailyExpenses(c *gin.Context) {
	totals, err := h.reportService.GetDailyExpenses(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := make([]DayTotalResponse, 0, len(totals))
	for _, t := range totals {
		days = append(days, DayTotalResponse{Day: t.Day, Total: money.FormatCents(t.Total)})
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

// GetCategoryBreakdown handles the per-category expense breakdown request
// @Summary     Category breakdown
// @Description Expense totals grouped by category for a date window, defaulting to the current month
// @Tags        reports
// @Produce     json
// @Param       from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} map[string][]CategoryTotalResponse "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/categories [get]
func (h *ReportHandler) GetCategoryBreakdown(c *gin.Context) {
	from, to, err := parseReportWindow(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.reportService.GetCategoryBreakdown(from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories := make([]CategoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		categories = append(categories, CategoryTotalResponse{Name: t.Name, Total: money.FormatCents(t.Total)})
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetMonthlyTrend handles the monthly income/expense trend request
// @Summary     Monthly trend
// @Description Income and expense totals per month over a trailing window
// @Tags        reports
// @Produce     json
// @Param       months query int false "Number of months (default 6, max 24)"
// @Success     200 {object} map[string][]MonthTotalResponse "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid months"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) GetMonthlyTrend(c *gin.Context) {
	months := 6
	if v := c.Query("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 24 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be an integer between 1 and 24"))
			return
		}
		months = parsed
	}

	totals, err := h.reportService.GetMonthlyTrend(time.Now(), months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend := make([]MonthTotalResponse, 0, len(totals))
	for _, t := range totals {
		trend = append(trend, MonthTotalResponse{
			Month:   t.Month,
			Income:  money.FormatCents(t.Income),
			Expense: money.FormatCents(t.Expense),
		})
	}

	c.JSON(http.StatusOK, gin.H{"months": trend})
}

// GetBudgetProgress handles the budget progress request for a category
// @Summary     Budget progress
// @Description Month-to-date spending against a category's budget limit
// @Tags        reports
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} BudgetProgressResponse "Budget progress"
// @Failure     400 {object} ErrorResponse "Category has no budget limit"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/budget/{id} [get]
func (h *ReportHandler) GetBudgetProgress(c *gin.Context) {
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.reportService.GetBudgetProgress(categoryID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": BudgetProgressResponse{
		CategoryID: progress.CategoryID,
		Budgeted:   money.FormatCents(progress.Budgeted),
		Spent:      money.FormatCents(progress.Spent),
		Remaining:  money.FormatCents(progress.Remaining),
		Percentage: progress.Percentage,
	}})
}

// ExportCSV handles the transaction export request
// @Summary     Export transactions as CSV
// @Description Export transactions in a date window as a CSV file, defaulting to the current month
// @Tags        reports
// @Produce     text/csv
// @Param       from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param       to   query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {string} string "CSV content"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	from, to, err := parseReportWindow(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	csvData, err := h.reportService.ExportCSV(from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", from.Format("2006-01-02"), to.Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", []byte(csvData))
}

// parseReportWindow reads the optional from/to query parameters, defaulting
// to the current calendar month.
func parseReportWindow(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := c.Query("from"); v != "" {
		parsed, err := parseFlexibleTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from format, use RFC3339 or YYYY-MM-DD")
		}
		from = parsed
	}

	if v := c.Query("to"); v != "" {
		parsed, err := parseFlexibleTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to format, use RFC3339 or YYYY-MM-DD")
		}
		to = parsed
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be after from")
	}

	return from, to, nil
}
