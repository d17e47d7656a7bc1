package sale

import "errors"

// 业务错误，调用方据此判断失败原因；任何失败都不会留下部分状态
var (
	ErrWrongPhase              = errors.New("operation not allowed in current phase")
	ErrCollateralRequired      = errors.New("collateral required before deposit")
	ErrAlreadyDeposited        = errors.New("collateral already deposited")
	ErrContributionCapExceeded = errors.New("contribution exceeds max contribution amount")
	ErrAlreadyHarvested        = errors.New("already harvested")
	ErrNothingToHarvest        = errors.New("nothing to harvest")
	ErrExceedsWithdrawable     = errors.New("amount exceeds withdrawable balance")
	ErrInvalidConfig           = errors.New("invalid sale config")
	ErrUnauthorized            = errors.New("caller is not the sale admin")
	ErrInvalidAmount           = errors.New("amount must be positive")
)

// 资产账本透传错误
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotApproved       = errors.New("transfer not approved")
)
