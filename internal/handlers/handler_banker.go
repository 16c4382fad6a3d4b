package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bankerHandler exposes the operator endpoints: customer listing, account
// freezes, aggregates and reconciliation audits.
type bankerHandler struct {
	customerService  portssvc.CustomerSvcFacade
	reportingService portssvc.ReportingSvcFacade
}

func newBankerHandler(cs portssvc.CustomerSvcFacade, rs portssvc.ReportingSvcFacade) *bankerHandler {
	return &bankerHandler{customerService: cs, reportingService: rs}
}

// registerBankerRoutes registers the operator routes.
func registerBankerRoutes(rg *gin.RouterGroup, cs portssvc.CustomerSvcFacade, rs portssvc.ReportingSvcFacade) {
	h := newBankerHandler(cs, rs)

	banker := rg.Group("/banker")
	{
		banker.GET("/customers", h.listCustomers)
		banker.PATCH("/accounts/:id/status", h.updateAccountStatus)
		banker.GET("/accounts/:id/reconciliation", h.reconcileAccount)
		banker.GET("/stats", h.transactionStats)
	}
}

// listCustomers godoc
// @Summary List all customers
// @Tags banker
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListCustomersResponse
// @Security BearerAuth
// @Router /banker/customers [get]
func (h *bankerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCustomersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListCustomers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.customerService.ListCustomers(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateAccountStatus godoc
// @Summary Freeze or unfreeze an account
// @Description FROZEN accounts reject every balance mutation until reactivated
// @Tags banker
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param body body dto.UpdateAccountStatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /banker/accounts/{id}/status [patch]
func (h *bankerHandler) updateAccountStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccountStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.customerService.UpdateAccountStatus(c.Request.Context(), accountID, req.Status); err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Account status updated", slog.String("account_id", accountID), slog.String("status", string(req.Status)))
	c.Status(http.StatusNoContent)
}

// reconcileAccount godoc
// @Summary Reconcile an account against its ledger
// @Description Recomputes the signed sum of the account's entries and compares it with the stored balance
// @Tags banker
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.ReconciliationResult
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /banker/accounts/{id}/reconciliation [get]
func (h *bankerHandler) reconcileAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	resp, err := h.reportingService.ReconcileAccount(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// transactionStats godoc
// @Summary Aggregate transaction statistics
// @Tags banker
// @Produce json
// @Success 200 {object} dto.TransactionStatsResponse
// @Security BearerAuth
// @Router /banker/stats [get]
func (h *bankerHandler) transactionStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.reportingService.TransactionStats(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
