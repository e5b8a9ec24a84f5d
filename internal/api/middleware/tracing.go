package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/krupapatkar/appsolution-admin/internal/tracing"
)

// Tracing returns a gin middleware that wraps each request in a tracer
// transaction named after the route.
func Tracing(tracer tracing.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Request.Method + " " + c.FullPath()
		txn := tracer.StartTransaction(name)
		defer tracer.EndTransaction(txn)

		tracer.AddAttribute(txn, "client_ip", c.ClientIP())

		c.Next()

		tracer.AddAttribute(txn, "status", c.Writer.Status())
		for _, ginErr := range c.Errors {
			tracer.RecordError(txn, ginErr.Err)
		}
	}
}
