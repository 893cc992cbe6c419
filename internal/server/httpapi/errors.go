package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ziplink/internal/common"
)

// statusFor maps stable domain error codes to HTTP statuses.
func statusFor(code string) int {
	switch code {
	case "InvalidInput":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "NotFound":
		return http.StatusNotFound
	case "AlreadyClaimed", "Expired", "Cancelled":
		return http.StatusConflict
	case "NoFunds", "InsufficientFunds":
		return http.StatusUnprocessableEntity
	case "SettlementBroadcastFailed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the uniform error body {code, error}.
func fail(c *gin.Context, err error) {
	code := common.ErrorCode(err)
	c.JSON(statusFor(code), gin.H{
		"code":  code,
		"error": err.Error(),
	})
}

// failInput is fail for request binding problems.
func failInput(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":  "InvalidInput",
		"error": err.Error(),
	})
}
