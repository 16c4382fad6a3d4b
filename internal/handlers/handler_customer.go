package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/birukt/bank_ledger_app/internal/apperrors"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// customerHandler handles HTTP requests related to customers.
type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
}

func newCustomerHandler(cs portssvc.CustomerSvcFacade) *customerHandler {
	return &customerHandler{customerService: cs}
}

// registerCustomerRoutes registers the protected customer routes.
func registerCustomerRoutes(rg *gin.RouterGroup, cs portssvc.CustomerSvcFacade) {
	h := newCustomerHandler(cs)

	customers := rg.Group("/customers")
	{
		customers.GET("/lookup", h.lookupByPhone)
		customers.GET("/:id", h.getCustomer)
		customers.PATCH("/:id", h.updateCustomer)
		customers.DELETE("/:id", h.deleteCustomer)
	}
}

// registerOnboardingRoutes registers the public customer creation route.
func registerOnboardingRoutes(rg *gin.RouterGroup, cs portssvc.CustomerSvcFacade) {
	h := newCustomerHandler(cs)
	rg.POST("/customers", h.createCustomer)
}

// requireSelf rejects requests where the authenticated customer is not the
// customer addressed by the path.
func requireSelf(c *gin.Context, customerID string) error {
	authID, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if authID != customerID {
		return fmt.Errorf("%w: not your profile", apperrors.ErrForbidden)
	}
	return nil
}

// createCustomer godoc
// @Summary Onboard a new customer
// @Description Creates the customer, their account and the phone directory mapping atomically
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Phone number already registered"
// @Router /customers [post]
func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.customerService.CreateCustomerAccount(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Customer onboarded", slog.String("customer_id", resp.CustomerID), slog.String("account_id", resp.AccountID))
	c.JSON(http.StatusCreated, resp)
}

// getCustomer godoc
// @Summary Get a customer profile
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 403 {object} map[string]string "Not your profile"
// @Failure 404 {object} map[string]string "Customer not found"
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	if err := requireSelf(c, customerID); err != nil {
		respondWithError(c, logger, err)
		return
	}

	resp, err := h.customerService.GetCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// lookupByPhone godoc
// @Summary Look up a customer by phone number
// @Description Resolves a phone number to a customer summary, used to preview a transfer recipient
// @Tags customers
// @Produce json
// @Param phoneNumber query string true "Phone number"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} map[string]string "No customer with that phone number"
// @Security BearerAuth
// @Router /customers/lookup [get]
func (h *customerHandler) lookupByPhone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	phoneNumber := c.Query("phoneNumber")
	if phoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phoneNumber query parameter is required"})
		return
	}

	resp, err := h.customerService.LookupByPhoneNumber(c.Request.Context(), phoneNumber)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateCustomer godoc
// @Summary Update a customer profile
// @Description Changes name and/or phone number; balances are never touched here
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body dto.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} dto.CustomerResponse
// @Failure 403 {object} map[string]string "Not your profile"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 409 {object} map[string]string "Phone number already registered"
// @Security BearerAuth
// @Router /customers/{id} [patch]
func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	if err := requireSelf(c, customerID); err != nil {
		respondWithError(c, logger, err)
		return
	}

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.customerService.UpdateCustomerProfile(c.Request.Context(), customerID, req)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deleteCustomer godoc
// @Summary Delete a customer
// @Description Soft-deletes the customer and closes their account; only allowed when the balance is exactly zero
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Not your profile"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 409 {object} map[string]string "Balance is not zero"
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *customerHandler) deleteCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("id")

	if err := requireSelf(c, customerID); err != nil {
		respondWithError(c, logger, err)
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), customerID); err != nil {
		respondWithError(c, logger, err)
		return
	}

	logger.Info("Customer deleted", slog.String("customer_id", customerID))
	c.Status(http.StatusNoContent)
}
