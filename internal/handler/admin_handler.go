package handler

import (
	"net/http"

	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员操作处理器
type AdminHandler struct {
	participateLogic *logic.ParticipateLogic
}

// NewAdminHandler 创建管理员操作处理器
func NewAdminHandler(participateLogic *logic.ParticipateLogic) *AdminHandler {
	return &AdminHandler{participateLogic: participateLogic}
}

// Withdraw 提取募集资产
func (h *AdminHandler) Withdraw(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.participateLogic.Withdraw(saleID, req.Caller, req.Amount); err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提取成功", nil)
}

// SetMaxContribution 调整单人贡献上限
func (h *AdminHandler) SetMaxContribution(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req SetMaxContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.participateLogic.SetMaxContribution(saleID, req.Caller, req.NewCap); err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "调整贡献上限成功", nil)
}
