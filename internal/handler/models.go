package handler

import (
	"time"

	"github.com/SlothFi/ido-launchpad/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 请求模型

// CreateSaleRequest 创建销售请求
type CreateSaleRequest struct {
	RaiseAsset         string    `json:"raiseAsset" binding:"required"`
	OfferAsset         string    `json:"offerAsset" binding:"required"`
	CollateralAsset    string    `json:"collateralAsset" binding:"required"`
	StartTime          time.Time `json:"startTime" binding:"required"`
	EndTime            time.Time `json:"endTime" binding:"required"`
	ClaimTime          time.Time `json:"claimTime" binding:"required"`
	OfferingAmount     string    `json:"offeringAmount" binding:"required"`
	RaisingAmount      string    `json:"raisingAmount" binding:"required"`
	MaxContribution    string    `json:"maxContribution" binding:"required"`
	RequiredCollateral string    `json:"requiredCollateral" binding:"required"`
	AdminAddress       string    `json:"adminAddress" binding:"required"`
	CollateralPolicy   string    `json:"collateralPolicy"`
}

// DepositCollateralRequest 质押请求
type DepositCollateralRequest struct {
	Address string `json:"address" binding:"required"`
}

// ContributeRequest 贡献请求
type ContributeRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// HarvestRequest 领取请求
type HarvestRequest struct {
	Address string `json:"address" binding:"required"`
}

// WithdrawRequest 管理员提取请求
type WithdrawRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// SetMaxContributionRequest 调整贡献上限请求
type SetMaxContributionRequest struct {
	Caller string `json:"caller" binding:"required"`
	NewCap string `json:"newCap" binding:"required"`
}

// 响应模型

// SaleResponse 销售响应模型
type SaleResponse struct {
	ID                 uint      `json:"id"`
	RaiseAsset         string    `json:"raiseAsset"`
	OfferAsset         string    `json:"offerAsset"`
	CollateralAsset    string    `json:"collateralAsset"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	ClaimTime          time.Time `json:"claimTime"`
	OfferingAmount     string    `json:"offeringAmount"`
	RaisingAmount      string    `json:"raisingAmount"`
	MaxContribution    string    `json:"maxContribution"`
	RequiredCollateral string    `json:"requiredCollateral"`
	AdminAddress       string    `json:"adminAddress"`
	CollateralPolicy   string    `json:"collateralPolicy"`
	Status             string    `json:"status"`
	TotalContributed   string    `json:"totalContributed"`
	TotalWithdrawn     string    `json:"totalWithdrawn"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ToSaleResponse 转换销售响应
func ToSaleResponse(s *model.Sale) SaleResponse {
	return SaleResponse{
		ID:                 s.ID,
		RaiseAsset:         s.RaiseAsset,
		OfferAsset:         s.OfferAsset,
		CollateralAsset:    s.CollateralAsset,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		ClaimTime:          s.ClaimTime,
		OfferingAmount:     s.OfferingAmount,
		RaisingAmount:      s.RaisingAmount,
		MaxContribution:    s.MaxContribution,
		RequiredCollateral: s.RequiredCollateral,
		AdminAddress:       s.AdminAddress,
		CollateralPolicy:   s.CollateralPolicy,
		Status:             string(s.Status),
		TotalContributed:   s.TotalContributed,
		TotalWithdrawn:     s.TotalWithdrawn,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// ToSaleResponseList 转换销售响应列表
func ToSaleResponseList(sales []model.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, ToSaleResponse(&sales[i]))
	}
	return out
}

// ContributeRecordResponse 贡献记录响应模型
type ContributeRecordResponse struct {
	ID        uint      `json:"id"`
	SaleID    uint      `json:"saleId"`
	Address   string    `json:"address"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToContributeRecordResponseList 转换贡献记录响应列表
func ToContributeRecordResponseList(records []model.ContributeRecord) []ContributeRecordResponse {
	out := make([]ContributeRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ContributeRecordResponse{
			ID:        r.ID,
			SaleID:    r.SaleID,
			Address:   r.Address,
			Amount:    r.Amount,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// ParticipantResponse 参与者响应模型
type ParticipantResponse struct {
	Address             string `json:"address"`
	CollateralDeposited bool   `json:"collateralDeposited"`
	Contribution        string `json:"contribution"`
	Harvested           bool   `json:"harvested"`
	Allocation          string `json:"allocation"` // 百万分之一
}

// HarvestResponse 领取响应模型
type HarvestResponse struct {
	OfferAmount        string `json:"offerAmount"`
	Refund             string `json:"refund"`
	CollateralReturned string `json:"collateralReturned"`
}

// GetSalesResponse 销售列表响应
type GetSalesResponse struct {
	Sales []SaleResponse `json:"sales"`
}

// GetSaleContributionsResponse 贡献记录列表响应
type GetSaleContributionsResponse struct {
	Records    []ContributeRecordResponse `json:"records"`
	Pagination Pagination                 `json:"pagination"`
}
