package sale

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndList(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(NewMemoryLedger(), clock)

	first, err := reg.CreateSale(testConfig(clock.Now()))
	require.NoError(t, err)

	second, err := reg.CreateSale(testConfig(clock.Now()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID())
	assert.Equal(t, int64(2), second.ID())
	assert.NotEqual(t, first.Custody(), second.Custody())

	// 列表按创建顺序且稳定
	sales := reg.Sales()
	require.Len(t, sales, 2)
	assert.Same(t, first, sales[0])
	assert.Same(t, second, sales[1])

	cfg := sales[0].Snapshot()
	assert.Equal(t, int64(10_000), cfg.OfferingAmount.Int64())
	assert.Equal(t, int64(1_000), cfg.RaisingAmount.Int64())
	assert.Equal(t, CollateralRefund, cfg.CollateralPolicy)

	got, ok := reg.Get(2)
	require.True(t, ok)
	assert.Same(t, second, got)
	_, ok = reg.Get(99)
	assert.False(t, ok)
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(NewMemoryLedger(), clock)

	cases := map[string]func(*Config){
		"start after end":     func(c *Config) { c.StartTime = c.EndTime.Add(time.Minute) },
		"claim before end":    func(c *Config) { c.ClaimTime = c.EndTime.Add(-time.Minute) },
		"zero offering":       func(c *Config) { c.OfferingAmount = big.NewInt(0) },
		"negative raising":    func(c *Config) { c.RaisingAmount = big.NewInt(-1) },
		"nil max":             func(c *Config) { c.MaxContribution = nil },
		"zero collateral":     func(c *Config) { c.RequiredCollateral = big.NewInt(0) },
		"missing admin":       func(c *Config) { c.AdminAddress = "" },
		"missing raise asset": func(c *Config) { c.RaiseAsset = "" },
		"unknown policy":      func(c *Config) { c.CollateralPolicy = "burn" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(clock.Now())
			mutate(&cfg)
			_, err := reg.CreateSale(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	assert.Empty(t, reg.Sales())
}

func TestRegistryAdoptSale(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(NewMemoryLedger(), clock)

	restored, err := reg.AdoptSale(7, testConfig(clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(7), restored.ID())

	// 编号被占用时报错
	_, err = reg.AdoptSale(7, testConfig(clock.Now()))
	assert.Error(t, err)

	// 新建实例从恢复编号之后继续
	next, err := reg.CreateSale(testConfig(clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID())
}

func TestRestoreParticipantState(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(NewMemoryLedger(), clock)

	s, err := reg.AdoptSale(1, testConfig(clock.Now()))
	require.NoError(t, err)

	s.RestoreParticipant(alice, true, big.NewInt(400), false)
	s.RestoreParticipant(bob, true, big.NewInt(200), true)
	s.RestoreWithdrawn(big.NewInt(300))

	assert.Equal(t, int64(600), s.TotalContributed().Int64())
	assert.Equal(t, int64(300), s.TotalWithdrawn().Int64())
	assert.True(t, s.HasCollateral(alice))
	assert.True(t, s.ParticipantState(bob).Harvested)
	assert.Equal(t, int64(400), s.ParticipantState(alice).Contribution.Int64())
}
