package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"golinks/internal/apperrors"
	"golinks/response"
)

// GlobalErrorMiddleware maps errors collected on the context to the JSON
// envelope. Handlers attach AppErrors via c.Error and return.
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr))
					return
				}
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("System error"))
			return
		}
	}
}
