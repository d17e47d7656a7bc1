package scheduler

import (
	"sync"
	"time"

	"github.com/SlothFi/ido-launchpad/internal/config"
	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// SaleStatusJob 销售状态同步任务，把引擎阶段和累计金额回写存档。
// 协程池随任务创建，各次执行复用，Release 时统一释放。
type SaleStatusJob struct {
	saleLogic *logic.SaleLogic
	config    *config.Config
	pool      *ants.Pool
}

// NewSaleStatusJob 创建销售状态同步任务
func NewSaleStatusJob(saleLogic *logic.SaleLogic, cfg *config.Config) (*SaleStatusJob, error) {
	poolSize := cfg.Scheduler.PoolSize
	if poolSize <= 0 {
		poolSize = 8
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &SaleStatusJob{
		saleLogic: saleLogic,
		config:    cfg,
		pool:      pool,
	}, nil
}

// GetName 获取任务名称
func (j *SaleStatusJob) GetName() string {
	return "sale_status_sync"
}

// GetSchedule 获取调度配置
func (j *SaleStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *SaleStatusJob) Execute() {
	sales, err := j.saleLogic.GetSales()
	if err != nil {
		logger.Error("Failed to fetch sales for status sync: %v", err)
		return
	}
	if len(sales) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, s := range sales {
		saleID := int64(s.ID)
		wg.Add(1)
		submitErr := j.pool.Submit(func() {
			defer wg.Done()
			if err := j.saleLogic.SyncSaleStatus(saleID); err != nil {
				logger.Error("Failed to sync sale %d status: %v", saleID, err)
			}
		})
		if submitErr != nil {
			wg.Done()
			logger.Error("Failed to submit sync task for sale %d: %v", saleID, submitErr)
		}
	}
	wg.Wait()

	logger.Debug("Sale status sync finished for %d sales", len(sales))
}

// Release 释放协程池
func (j *SaleStatusJob) Release() {
	j.pool.Release()
}
