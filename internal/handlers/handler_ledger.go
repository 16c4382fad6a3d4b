package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles deposits, withdrawals, transfers and history.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers the balance-mutation and history routes.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ls)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("/:id/deposit", h.deposit)
		accounts.POST("/:id/withdraw", h.withdraw)
		accounts.GET("/:id/transactions", h.getHistory)
	}
	rg.POST("/transfers", h.transfer)
}

// deposit godoc
// @Summary Deposit into an account
// @Description Increases the account balance and appends a DEPOSIT ledger entry
// @Tags ledger
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param body body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account busy, retry"
// @Security BearerAuth
// @Router /accounts/{id}/deposit [post]
func (h *ledgerHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Deposit(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, NewBalance: newBalance})
}

// withdraw godoc
// @Summary Withdraw from an account
// @Description Decreases the account balance and appends a WITHDRAW ledger entry
// @Tags ledger
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param body body dto.AmountRequest true "Amount"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /accounts/{id}/withdraw [post]
func (h *ledgerHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	newBalance, err := h.ledgerService.Withdraw(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, NewBalance: newBalance})
}

// transfer godoc
// @Summary Transfer between accounts
// @Description Moves money atomically; the receiver may be an account ID or a phone number
// @Tags ledger
// @Accept json
// @Produce json
// @Param body body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResult
// @Failure 400 {object} map[string]string "Invalid request or self transfer"
// @Failure 404 {object} map[string]string "Sender or receiver not found"
// @Failure 409 {object} map[string]string "Accounts busy, retry"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Transfer completed",
		slog.String("from_account_id", result.FromAccountID),
		slog.String("to_account_id", result.ToAccountID),
		slog.String("correlation_id", result.CorrelationID),
	)
	c.JSON(http.StatusOK, result)
}

// getHistory godoc
// @Summary List account transaction history
// @Description Returns ledger entries for the account, most recent first, with token pagination
// @Tags ledger
// @Produce json
// @Param id path string true "Account ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Pagination token from previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/transactions [get]
func (h *ledgerHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetHistory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.GetHistory(c.Request.Context(), accountID, params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
