package logic

import (
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/SlothFi/ido-launchpad/internal/model"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// openTestDB 打开共享缓存的内存库，gorm 连接池复用同一份数据
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Sale{},
		&model.CollateralRecord{},
		&model.ContributeRecord{},
		&model.HarvestRecord{},
		&model.WithdrawRecord{},
	))
	return db
}

type testEnv struct {
	db     *gorm.DB
	clock  *stubClock
	ledger *sale.MemoryLedger
	sales  *SaleLogic
	part   *ParticipateLogic
}

func newTestEnv(t *testing.T, dbName string) *testEnv {
	t.Helper()

	db := openTestDB(t, dbName)
	clock := &stubClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ledger := sale.NewMemoryLedger()
	registry := sale.NewRegistry(ledger, clock)
	sales := NewSaleLogic(db, registry, sale.CollateralRefund)

	return &testEnv{
		db:     db,
		clock:  clock,
		ledger: ledger,
		sales:  sales,
		part:   NewParticipateLogic(db, sales),
	}
}

func (e *testEnv) createSale(t *testing.T) *model.Sale {
	t.Helper()

	now := e.clock.Now()
	record, err := e.sales.CreateSale(CreateSaleInput{
		RaiseAsset:         "WONE",
		OfferAsset:         "GME",
		CollateralAsset:    "MON",
		StartTime:          now.Add(time.Hour),
		EndTime:            now.Add(2 * time.Hour),
		ClaimTime:          now.Add(3 * time.Hour),
		OfferingAmount:     "10000",
		RaisingAmount:      "1000",
		MaxContribution:    "1000",
		RequiredCollateral: "100",
		AdminAddress:       "0xadmin",
	})
	require.NoError(t, err)

	// 托管账户与参与者备好余额和授权
	e.ledger.Mint("GME", record.Custody, big.NewInt(10_000))
	e.ledger.Approve("GME", record.Custody)
	e.ledger.Approve("WONE", record.Custody)
	e.ledger.Approve("MON", record.Custody)
	e.ledger.Mint("WONE", "0xalice", big.NewInt(10_000))
	e.ledger.Mint("MON", "0xalice", big.NewInt(1_000))
	e.ledger.Approve("WONE", "0xalice")
	e.ledger.Approve("MON", "0xalice")

	return record
}

func TestBootstrapRestoresWithdrawn(t *testing.T) {
	env := newTestEnv(t, "boot_withdrawn")
	record := env.createSale(t)
	saleID := int64(record.ID)

	env.clock.Advance(90 * time.Minute)
	require.NoError(t, env.part.DepositCollateral(saleID, "0xalice"))
	require.NoError(t, env.part.Contribute(saleID, "0xalice", "500"))

	env.clock.Advance(45 * time.Minute)
	require.NoError(t, env.part.Withdraw(saleID, "0xadmin", "300"))

	// 换一套引擎，从同一份存档重建
	registry := sale.NewRegistry(env.ledger, env.clock)
	restored := NewSaleLogic(env.db, registry, sale.CollateralRefund)
	require.NoError(t, restored.Bootstrap())

	instance, err := restored.Instance(saleID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), instance.TotalContributed().Int64())
	assert.Equal(t, int64(300), instance.TotalWithdrawn().Int64())
	assert.True(t, instance.HasCollateral("0xalice"))

	// 历史提取必须计入上限：可提余额只剩 200
	err = instance.FinalWithdraw("0xadmin", big.NewInt(201))
	assert.ErrorIs(t, err, sale.ErrExceedsWithdrawable)
	require.NoError(t, instance.FinalWithdraw("0xadmin", big.NewInt(200)))
}

func TestBootstrapFailsOnBrokenDB(t *testing.T) {
	env := newTestEnv(t, "boot_broken")
	env.createSale(t)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	registry := sale.NewRegistry(env.ledger, env.clock)
	restored := NewSaleLogic(env.db, registry, sale.CollateralRefund)
	assert.Error(t, restored.Bootstrap())
}

func TestGetSaleStatsFailsOnBrokenDB(t *testing.T) {
	env := newTestEnv(t, "stats_broken")
	record := env.createSale(t)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = env.sales.GetSaleStats(int64(record.ID))
	assert.Error(t, err)
}
