package sale

import "time"

// Phase 销售阶段
type Phase string

const (
	PhasePending   Phase = "pending"   // 未开始
	PhaseOpen      Phase = "open"      // 募集中
	PhaseClosed    Phase = "closed"    // 已结束，等待领取开启
	PhaseClaimable Phase = "claimable" // 可领取
)

// phaseAt 根据时间计算所处阶段，阶段只由时间决定，没有显式状态迁移
func phaseAt(cfg *Config, now time.Time) Phase {
	switch {
	case now.Before(cfg.StartTime):
		return PhasePending
	case now.Before(cfg.EndTime):
		return PhaseOpen
	case now.Before(cfg.ClaimTime):
		return PhaseClosed
	default:
		return PhaseClaimable
	}
}
