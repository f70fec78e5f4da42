package api

import (
	"errors"
	"net/http"

	"github.com/example/storefront/pkg/checkout"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto the {success:false, error} envelope.
// Unknown failures become a generic 500; the underlying detail is only
// echoed back in debug mode.
func (s *Server) respondError(c *gin.Context, err error) {
	var validationErr *checkout.ValidationError
	var stockErr *checkout.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Message})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": stockErr.Error()})
	case errors.Is(err, checkout.ErrProductNotFound), errors.Is(err, checkout.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		payload := gin.H{"success": false, "error": "internal server error"}
		if s.config.Server.Debug {
			payload["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, payload)
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
