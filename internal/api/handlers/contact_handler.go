package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krupapatkar/appsolution-admin/internal/api/middleware"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/services"
)

// ContactHandler handles inquiry HTTP requests
type ContactHandler struct {
	contacts *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// SubmitContactRequest is the public contact form payload.
type SubmitContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// HandleSubmit logs an inquiry from the public contact form.
func (h *ContactHandler) HandleSubmit(c *gin.Context) {
	var req SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("body", err.Error()))
		return
	}

	contact, err := h.contacts.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for your message. We will get back to you soon.",
		"contact": contact,
	})
}

// HandleListAdmin returns the admin inbox page.
func (h *ContactHandler) HandleListAdmin(c *gin.Context) {
	page, ok := parsePage(c, query.DefaultAdminPageSize)
	if !ok {
		return
	}

	result, err := h.contacts.ListAdmin(c.Request.Context(), query.ListParams{
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

// HandleGetAdmin returns a single inquiry.
func (h *ContactHandler) HandleGetAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// HandleTransition moves the handling status.
func (h *ContactHandler) HandleTransition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}

	contact, err := h.contacts.Transition(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// HandleDelete removes an inquiry.
func (h *ContactHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// RegisterRoutes registers the handler's routes
func (h *ContactHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/contact", h.HandleSubmit)

	admin := router.Group("/api/contact", middleware.RequireAdmin())
	{
		admin.GET("/admin/all", h.HandleListAdmin)
		admin.GET("/admin/:id", h.HandleGetAdmin)
		admin.PATCH("/:id/status", h.HandleTransition)
		admin.DELETE("/:id", h.HandleDelete)
	}
}
