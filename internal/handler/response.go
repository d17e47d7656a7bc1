package handler

import (
	"errors"
	"net/http"

	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// SaleErrorResponse 将引擎错误映射为HTTP状态码
func SaleErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logic.ErrSaleNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, sale.ErrUnauthorized):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, sale.ErrWrongPhase),
		errors.Is(err, sale.ErrAlreadyDeposited),
		errors.Is(err, sale.ErrAlreadyHarvested):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, sale.ErrCollateralRequired),
		errors.Is(err, sale.ErrContributionCapExceeded),
		errors.Is(err, sale.ErrNothingToHarvest),
		errors.Is(err, sale.ErrExceedsWithdrawable),
		errors.Is(err, sale.ErrInsufficientFunds),
		errors.Is(err, sale.ErrNotApproved),
		errors.Is(err, sale.ErrInvalidConfig),
		errors.Is(err, sale.ErrInvalidAmount):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
