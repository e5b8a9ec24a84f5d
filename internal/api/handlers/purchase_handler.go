package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/krupapatkar/appsolution-admin/internal/api/middleware"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/services"
)

// PurchaseHandler handles purchase ledger HTTP requests
type PurchaseHandler struct {
	purchases *services.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchases *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// RecordPurchaseRequest is the checkout callback payload.
type RecordPurchaseRequest struct {
	ProductID     string  `json:"productId" binding:"required"`
	CustomerName  string  `json:"customerName" binding:"required"`
	CustomerEmail string  `json:"customerEmail" binding:"required"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId"`
	Completed     bool    `json:"completed"`
}

// HandleRecord records a new order from the checkout flow.
func (h *PurchaseHandler) HandleRecord(c *gin.Context) {
	var req RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("body", err.Error()))
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		respondError(c, errs.Validation("productId", "must be a valid id"))
		return
	}

	purchase, err := h.purchases.Record(c.Request.Context(), services.RecordPurchaseInput{
		ProductID:     productID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Completed:     req.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

// HandleRedeem records one download against a completed purchase.
func (h *PurchaseHandler) HandleRedeem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	grant, err := h.purchases.Redeem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// HandleListAdmin returns the admin order page.
func (h *PurchaseHandler) HandleListAdmin(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultAdminPageSize)
	if !ok {
		return
	}

	result, err := h.purchases.ListAdmin(c.Request.Context(), query.ListParams{
		Scope:  query.ScopeAdmin,
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleGetAdmin returns a single purchase.
func (h *PurchaseHandler) HandleGetAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	purchase, err := h.purchases.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// HandleStats returns the revenue and volume aggregates for the admin
// dashboard.
func (h *PurchaseHandler) HandleStats(c *gin.Context) {
	stats, err := h.purchases.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleTransition moves the payment status.
func (h *PurchaseHandler) HandleTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	purchase, err := h.purchases.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// RegisterRoutes registers the handler's routes
func (h *PurchaseHandler) RegisterRoutes(router *gin.Engine) {
	public := router.Group("/api/purchases")
	{
		public.POST("", h.HandleRecord)
		public.POST("/:id/download", h.HandleRedeem)
	}

	admin := router.Group("/api/purchases", middleware.RequireAdmin())
	{
		admin.GET("/admin/all", h.HandleListAdmin)
		admin.GET("/admin/stats", h.HandleStats)
		admin.GET("/admin/:id", h.HandleGetAdmin)
		admin.PATCH("/:id/status", h.HandleTransition)
	}
}
