package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/query"
)

// respondError maps the domain failure taxonomy onto HTTP statuses.
// Internal details never leak for unexpected errors.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errs.IsInvalidTransition(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errs.IsNotEntitled(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errs.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseID parses the :id path parameter. A malformed id responds 404
// rather than 400 so unguessable ids and malformed ones look the same.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// parsePage normalizes the page and limit query parameters.
func parsePage(c *gin.Context, defaultSize int) (query.Page, bool) {
	number, err := intQuery(c, "page")
	if err != nil {
		respondError(c, errs.Validation("page", "must be an integer"))
		return query.Page{}, false
	}
	size, err := intQuery(c, "limit")
	if err != nil {
		respondError(c, errs.Validation("limit", "must be an integer"))
		return query.Page{}, false
	}

	page, err := query.NormalizePage(number, size, defaultSize)
	if err != nil {
		respondError(c, err)
		return query.Page{}, false
	}
	return page, true
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// bindStatus parses the body of a status transition request.
func bindStatus(c *gin.Context) (string, bool) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("status", "is required"))
		return "", false
	}
	return req.Status, true
}
