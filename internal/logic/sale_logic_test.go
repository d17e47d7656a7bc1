package logic

import (
	"testing"
	"time"

	"github.com/SlothFi/ido-launchpad/internal/sale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("1000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", amount.String())

	for _, bad := range []string{"", "abc", "1.5", "0x10"} {
		_, err := parseAmount(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestBuildConfigDefaults(t *testing.T) {
	l := NewSaleLogic(nil, nil, sale.CollateralRetain)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	input := CreateSaleInput{
		RaiseAsset:         "WONE",
		OfferAsset:         "GME",
		CollateralAsset:    "MON",
		StartTime:          now,
		EndTime:            now.Add(time.Hour),
		ClaimTime:          now.Add(2 * time.Hour),
		OfferingAmount:     "10000",
		RaisingAmount:      "1000",
		MaxContribution:    "1000",
		RequiredCollateral: "100",
		AdminAddress:       "0xadmin",
	}

	// 未指定策略时落到服务默认值
	cfg, err := l.buildConfig(input)
	require.NoError(t, err)
	assert.Equal(t, sale.CollateralRetain, cfg.CollateralPolicy)
	require.NoError(t, cfg.Validate())

	// 显式策略优先
	input.CollateralPolicy = "refund"
	cfg, err = l.buildConfig(input)
	require.NoError(t, err)
	assert.Equal(t, sale.CollateralRefund, cfg.CollateralPolicy)

	// 金额非法直接报错
	input.OfferingAmount = "ten"
	_, err = l.buildConfig(input)
	assert.Error(t, err)
}
