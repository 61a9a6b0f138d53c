package middleware

import (
	"net/http"

	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kasioon/search-gateway/internal/errors"
)

// ErrorHandler renders whatever error the handler chain attached to the
// gin context as a uniform envelope, translating AppError into its own
// HTTP status and falling back to 500 for anything unrecognized.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := errors.IsAppError(err); ok {
			if appErr.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
			}
			c.JSON(appErr.HTTPCode, gin.H{
				"success": false,
				"error": gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
					"details": appErr.Details,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    errors.ErrInternalServer,
				"message": "internal server error",
			},
		})
	}
}
