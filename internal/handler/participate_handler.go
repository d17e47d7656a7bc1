package handler

import (
	"net/http"

	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/gin-gonic/gin"
)

// ParticipateHandler 参与流程处理器
type ParticipateHandler struct {
	participateLogic *logic.ParticipateLogic
}

// NewParticipateHandler 创建参与流程处理器
func NewParticipateHandler(participateLogic *logic.ParticipateLogic) *ParticipateHandler {
	return &ParticipateHandler{participateLogic: participateLogic}
}

// DepositCollateral 质押准入资产
func (h *ParticipateHandler) DepositCollateral(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req DepositCollateralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.participateLogic.DepositCollateral(saleID, req.Address); err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "质押成功", nil)
}

// Contribute 贡献募集资产
func (h *ParticipateHandler) Contribute(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.participateLogic.Contribute(saleID, req.Address, req.Amount); err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "贡献成功", nil)
}

// Harvest 领取发售资产及退款
func (h *ParticipateHandler) Harvest(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	var req HarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.participateLogic.Harvest(saleID, req.Address)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "领取成功", HarvestResponse{
		OfferAmount:        result.OfferAmount.String(),
		Refund:             result.Refund.String(),
		CollateralReturned: result.CollateralReturned.String(),
	})
}

// GetAllocation 查询参与者配额
func (h *ParticipateHandler) GetAllocation(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}
	address := c.Param("address")

	allocation, err := h.participateLogic.UserAllocation(saleID, address)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取配额成功", gin.H{
		"address":    address,
		"allocation": allocation.String(),
	})
}

// GetParticipant 查询参与者记录
func (h *ParticipateHandler) GetParticipant(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}
	address := c.Param("address")

	participant, err := h.participateLogic.GetParticipant(saleID, address)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}
	if participant == nil {
		ErrorResponse(c, http.StatusNotFound, "参与者不存在")
		return
	}

	allocation, err := h.participateLogic.UserAllocation(saleID, address)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取参与者成功", ParticipantResponse{
		Address:             participant.Address,
		CollateralDeposited: participant.CollateralDeposited,
		Contribution:        participant.Contribution.String(),
		Harvested:           participant.Harvested,
		Allocation:          allocation.String(),
	})
}

// GetCollateralStatus 查询参与者质押状态
func (h *ParticipateHandler) GetCollateralStatus(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}
	address := c.Param("address")

	hasCollateral, err := h.participateLogic.HasCollateral(saleID, address)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取质押状态成功", gin.H{
		"address":       address,
		"hasCollateral": hasCollateral,
	})
}
