package scheduler

import (
	"github.com/SlothFi/ido-launchpad/internal/config"
	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	saleLogic *logic.SaleLogic
	config    *config.Config
	statusJob *SaleStatusJob
}

// NewManager 创建新的任务管理器
func NewManager(saleLogic *logic.SaleLogic, cfg *config.Config) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Manager{
		scheduler: s,
		saleLogic: saleLogic,
		config:    cfg,
	}, nil
}

// Start 启动任务管理器
func Start(saleLogic *logic.SaleLogic, cfg *config.Config) (*Manager, error) {
	manager, err := NewManager(saleLogic, cfg)
	if err != nil {
		return nil, err
	}

	// 注册所有任务
	if err := manager.RegisterJobs(); err != nil {
		return nil, err
	}

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager, nil
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() error {
	job, err := NewSaleStatusJob(m.saleLogic, m.config)
	if err != nil {
		return err
	}
	m.statusJob = job
	m.registerSaleStatusJob(job)
	return nil
}

// registerSaleStatusJob 注册销售状态同步任务
func (m *Manager) registerSaleStatusJob(job *SaleStatusJob) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	if m.statusJob != nil {
		m.statusJob.Release()
	}
	logger.Info("Task manager stopped")
}
