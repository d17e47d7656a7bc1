package handler

import (
	"net/http"
	"strconv"

	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/gin-gonic/gin"
)

// SaleHandler 销售处理器
type SaleHandler struct {
	saleLogic        *logic.SaleLogic
	participateLogic *logic.ParticipateLogic
}

// NewSaleHandler 创建销售处理器
func NewSaleHandler(saleLogic *logic.SaleLogic, participateLogic *logic.ParticipateLogic) *SaleHandler {
	return &SaleHandler{
		saleLogic:        saleLogic,
		participateLogic: participateLogic,
	}
}

// CreateSale 创建销售
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.saleLogic.CreateSale(logic.CreateSaleInput{
		RaiseAsset:         req.RaiseAsset,
		OfferAsset:         req.OfferAsset,
		CollateralAsset:    req.CollateralAsset,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		ClaimTime:          req.ClaimTime,
		OfferingAmount:     req.OfferingAmount,
		RaisingAmount:      req.RaisingAmount,
		MaxContribution:    req.MaxContribution,
		RequiredCollateral: req.RequiredCollateral,
		AdminAddress:       req.AdminAddress,
		CollateralPolicy:   req.CollateralPolicy,
	})
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建销售成功", ToSaleResponse(record))
}

// GetSales 获取销售列表
func (h *SaleHandler) GetSales(c *gin.Context) {
	sales, err := h.saleLogic.GetSales()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "获取销售列表成功", GetSalesResponse{
		Sales: ToSaleResponseList(sales),
	})
}

// GetSale 获取销售详情
func (h *SaleHandler) GetSale(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	record, err := h.saleLogic.GetSale(saleID)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取销售详情成功", ToSaleResponse(record))
}

// GetSaleStats 获取销售统计
func (h *SaleHandler) GetSaleStats(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	stats, err := h.saleLogic.GetSaleStats(saleID)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取销售统计成功", stats)
}

// GetSaleContributions 获取销售贡献记录
func (h *SaleHandler) GetSaleContributions(c *gin.Context) {
	saleID, ok := parseSaleID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	records, total, err := h.participateLogic.GetSaleContributions(saleID, page, pageSize)
	if err != nil {
		SaleErrorResponse(c, err)
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取贡献记录成功", GetSaleContributionsResponse{
		Records:    ToContributeRecordResponseList(records),
		Pagination: pagination,
	})
}

// parseSaleID 解析路径中的销售ID
func parseSaleID(c *gin.Context) (int64, bool) {
	saleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || saleID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的销售ID")
		return 0, false
	}
	return saleID, true
}
