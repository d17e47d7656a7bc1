package scheduler

import (
	"testing"
	"time"

	"github.com/SlothFi/ido-launchpad/internal/config"
	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/SlothFi/ido-launchpad/internal/model"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type frozenClock struct{ t time.Time }

func (c *frozenClock) Now() time.Time { return c.t }

func newJobFixture(t *testing.T) (*SaleStatusJob, *logic.SaleLogic, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:status_job?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Sale{}))

	clock := &frozenClock{t: time.Date(2024, 3, 1, 13, 30, 0, 0, time.UTC)}
	registry := sale.NewRegistry(sale.NewMemoryLedger(), clock)
	saleLogic := logic.NewSaleLogic(db, registry, sale.CollateralRefund)

	cfg := &config.Config{}
	cfg.Scheduler.Interval = 60
	cfg.Scheduler.PoolSize = 4

	job, err := NewSaleStatusJob(saleLogic, cfg)
	require.NoError(t, err)
	return job, saleLogic, db
}

func TestSaleStatusJobReusesPool(t *testing.T) {
	job, saleLogic, db := newJobFixture(t)
	defer job.Release()

	start := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	record, err := saleLogic.CreateSale(logic.CreateSaleInput{
		RaiseAsset:         "WONE",
		OfferAsset:         "GME",
		CollateralAsset:    "MON",
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		ClaimTime:          start.Add(2 * time.Hour),
		OfferingAmount:     "10000",
		RaisingAmount:      "1000",
		MaxContribution:    "1000",
		RequiredCollateral: "100",
		AdminAddress:       "0xadmin",
	})
	require.NoError(t, err)

	// 连续执行共用同一个协程池
	job.Execute()
	assert.False(t, job.pool.IsClosed())
	job.Execute()
	assert.False(t, job.pool.IsClosed())

	var synced model.Sale
	require.NoError(t, db.First(&synced, record.ID).Error)
	assert.Equal(t, model.SaleStatusOpen, synced.Status)
}

func TestSaleStatusJobRelease(t *testing.T) {
	job, _, _ := newJobFixture(t)
	job.Release()
	assert.True(t, job.pool.IsClosed())
}
