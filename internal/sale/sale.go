package sale

import (
	"math/big"
	"sync"
	"time"
)

// AllocationScale 配额精度，百万分之一。
// 单个参与者贡献满 raisingAmount 时配额恰好等于 AllocationScale（100%）
const AllocationScale = 1_000_000

// CollateralPolicy 质押处置策略
type CollateralPolicy string

const (
	CollateralRefund CollateralPolicy = "refund" // 领取时随收益一起退还
	CollateralRetain CollateralPolicy = "retain" // 保留在托管账户
)

// Config 销售配置，创建后除 MaxContribution 外不可变
type Config struct {
	RaiseAsset      string // 募集资产
	OfferAsset      string // 发售资产
	CollateralAsset string // 质押资产

	StartTime time.Time // 开始时间
	EndTime   time.Time // 结束时间
	ClaimTime time.Time // 领取开启时间

	OfferingAmount     *big.Int // 发售总量
	RaisingAmount      *big.Int // 募集目标
	MaxContribution    *big.Int // 单个参与者贡献上限（管理员可调整）
	RequiredCollateral *big.Int // 参与所需质押数量

	AdminAddress     string
	CollateralPolicy CollateralPolicy
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.RaiseAsset == "" || c.OfferAsset == "" || c.CollateralAsset == "" || c.AdminAddress == "" {
		return ErrInvalidConfig
	}
	if !c.StartTime.Before(c.EndTime) || !c.EndTime.Before(c.ClaimTime) {
		return ErrInvalidConfig
	}
	for _, amount := range []*big.Int{c.OfferingAmount, c.RaisingAmount, c.MaxContribution, c.RequiredCollateral} {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidConfig
		}
	}
	switch c.CollateralPolicy {
	case CollateralRefund, CollateralRetain:
	default:
		return ErrInvalidConfig
	}
	return nil
}

// Participant 单个参与者的记录，首次交互时惰性创建，永不删除
type Participant struct {
	Address             string
	CollateralDeposited bool
	Contribution        *big.Int
	Harvested           bool

	// 结算各笔转账的完成标记，领取中途失败后重试不会重复支付
	offerPaid      bool
	refundPaid     bool
	collateralPaid bool
}

// Sale 销售实例，一次 IDO 的全部记账状态。
// 所有写操作持有实例锁，检查-更新序列对外表现为原子的。
type Sale struct {
	mu sync.Mutex

	id      int64
	custody string // 托管账户
	cfg     Config

	ledger AssetLedger
	clock  Clock

	participants map[string]*Participant
	order        []string // 参与者首次交互顺序

	totalContributed *big.Int
	totalWithdrawn   *big.Int
}

// newSale 由 Registry 创建
func newSale(id int64, custody string, cfg Config, ledger AssetLedger, clock Clock) *Sale {
	return &Sale{
		id:      id,
		custody: custody,
		cfg: Config{
			RaiseAsset:         cfg.RaiseAsset,
			OfferAsset:         cfg.OfferAsset,
			CollateralAsset:    cfg.CollateralAsset,
			StartTime:          cfg.StartTime,
			EndTime:            cfg.EndTime,
			ClaimTime:          cfg.ClaimTime,
			OfferingAmount:     new(big.Int).Set(cfg.OfferingAmount),
			RaisingAmount:      new(big.Int).Set(cfg.RaisingAmount),
			MaxContribution:    new(big.Int).Set(cfg.MaxContribution),
			RequiredCollateral: new(big.Int).Set(cfg.RequiredCollateral),
			AdminAddress:       cfg.AdminAddress,
			CollateralPolicy:   cfg.CollateralPolicy,
		},
		ledger:           ledger,
		clock:            clock,
		participants:     make(map[string]*Participant),
		totalContributed: new(big.Int),
		totalWithdrawn:   new(big.Int),
	}
}

// ID 实例编号
func (s *Sale) ID() int64 { return s.id }

// Custody 托管账户
func (s *Sale) Custody() string { return s.custody }

// Phase 当前阶段
func (s *Sale) Phase() Phase {
	return phaseAt(&s.cfg, s.clock.Now())
}

// Snapshot 只读配置快照
func (s *Sale) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.OfferingAmount = new(big.Int).Set(s.cfg.OfferingAmount)
	cfg.RaisingAmount = new(big.Int).Set(s.cfg.RaisingAmount)
	cfg.MaxContribution = new(big.Int).Set(s.cfg.MaxContribution)
	cfg.RequiredCollateral = new(big.Int).Set(s.cfg.RequiredCollateral)
	return cfg
}

// TotalContributed 累计贡献
func (s *Sale) TotalContributed() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.totalContributed)
}

// TotalWithdrawn 管理员已提取金额
func (s *Sale) TotalWithdrawn() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.totalWithdrawn)
}

// HasCollateral 参与者是否已质押
func (s *Sale) HasCollateral(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[address]
	return p != nil && p.CollateralDeposited
}

// ParticipantState 参与者记录快照，不存在时返回 nil
func (s *Sale) ParticipantState(address string) *Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participants[address]
	if p == nil {
		return nil
	}
	return &Participant{
		Address:             p.Address,
		CollateralDeposited: p.CollateralDeposited,
		Contribution:        new(big.Int).Set(p.Contribution),
		Harvested:           p.Harvested,
	}
}

// Participants 按首次交互顺序返回全部记录快照
func (s *Sale) Participants() []*Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Participant, 0, len(s.order))
	for _, addr := range s.order {
		p := s.participants[addr]
		out = append(out, &Participant{
			Address:             p.Address,
			CollateralDeposited: p.CollateralDeposited,
			Contribution:        new(big.Int).Set(p.Contribution),
			Harvested:           p.Harvested,
		})
	}
	return out
}

// DepositCollateral 质押准入资产。仅 Open 阶段接受，重复质押返回 ErrAlreadyDeposited
func (s *Sale) DepositCollateral(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phaseAt(&s.cfg, s.clock.Now()) != PhaseOpen {
		return ErrWrongPhase
	}
	if p := s.participants[address]; p != nil && p.CollateralDeposited {
		return ErrAlreadyDeposited
	}
	// 先转账，失败时不留下任何状态
	if err := s.ledger.Transfer(s.cfg.CollateralAsset, address, s.custody, s.cfg.RequiredCollateral); err != nil {
		return err
	}
	p := s.participant(address)
	p.CollateralDeposited = true
	return nil
}

// Deposit 贡献募集资产。要求已质押，且累计贡献不超过当前上限
func (s *Sale) Deposit(address string, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phaseAt(&s.cfg, s.clock.Now()) != PhaseOpen {
		return ErrWrongPhase
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	p := s.participants[address]
	if p == nil || !p.CollateralDeposited {
		return ErrCollateralRequired
	}
	next := new(big.Int).Add(p.Contribution, amount)
	if next.Cmp(s.cfg.MaxContribution) > 0 {
		return ErrContributionCapExceeded
	}
	if err := s.ledger.Transfer(s.cfg.RaiseAsset, address, s.custody, amount); err != nil {
		return err
	}
	p.Contribution.Set(next)
	s.totalContributed.Add(s.totalContributed, amount)
	return nil
}

// UserAllocation 参与者配额，单位百万分之一。
// 分母取 max(totalContributed, raisingAmount)：未募满时按目标摊薄，
// 超募时按实际总额计算，全部配额之和恰为 AllocationScale
func (s *Sale) UserAllocation(address string) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocation(address)
}

func (s *Sale) allocation(address string) *big.Int {
	p := s.participants[address]
	if p == nil || s.totalContributed.Sign() == 0 {
		return new(big.Int)
	}
	denom := s.totalContributed
	if s.cfg.RaisingAmount.Cmp(denom) > 0 {
		denom = s.cfg.RaisingAmount
	}
	share := new(big.Int).Mul(p.Contribution, big.NewInt(AllocationScale))
	return share.Div(share, denom)
}

// HarvestResult 一次领取产生的各笔转账
type HarvestResult struct {
	OfferAmount        *big.Int // 发售资产
	Refund             *big.Int // 超募退款（募集资产）
	CollateralReturned *big.Int // 退还的质押，策略为 retain 时为 0
}

// Harvest 领取发售资产及超募退款，每个参与者仅一次。
// 每笔转账完成后单独标记，中途失败可重试，已付的不再重复
func (s *Sale) Harvest(address string) (*HarvestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if phaseAt(&s.cfg, s.clock.Now()) != PhaseClaimable {
		return nil, ErrWrongPhase
	}
	p := s.participants[address]
	if p == nil || !p.CollateralDeposited {
		return nil, ErrCollateralRequired
	}
	if p.Harvested {
		return nil, ErrAlreadyHarvested
	}
	if p.Contribution.Sign() == 0 {
		return nil, ErrNothingToHarvest
	}

	share := s.allocation(address)
	offerAmount := new(big.Int).Mul(s.cfg.OfferingAmount, share)
	offerAmount.Div(offerAmount, big.NewInt(AllocationScale))

	// 超募部分按贡献占比退款，其余计入实际募集额
	refund := new(big.Int)
	if s.totalContributed.Cmp(s.cfg.RaisingAmount) > 0 {
		excess := new(big.Int).Sub(s.totalContributed, s.cfg.RaisingAmount)
		refund.Mul(p.Contribution, excess)
		refund.Div(refund, s.totalContributed)
	}

	// 金额在任何转账前算定，贡献在 Claimable 阶段已冻结，重试时结果一致
	if !p.offerPaid {
		if err := s.ledger.Transfer(s.cfg.OfferAsset, s.custody, address, offerAmount); err != nil {
			return nil, err
		}
		p.offerPaid = true
	}
	if refund.Sign() > 0 && !p.refundPaid {
		if err := s.ledger.Transfer(s.cfg.RaiseAsset, s.custody, address, refund); err != nil {
			return nil, err
		}
		p.refundPaid = true
	}
	collateral := new(big.Int)
	if s.cfg.CollateralPolicy == CollateralRefund {
		if !p.collateralPaid {
			if err := s.ledger.Transfer(s.cfg.CollateralAsset, s.custody, address, s.cfg.RequiredCollateral); err != nil {
				return nil, err
			}
			p.collateralPaid = true
		}
		collateral.Set(s.cfg.RequiredCollateral)
	}

	p.Harvested = true
	return &HarvestResult{
		OfferAmount:        offerAmount,
		Refund:             refund,
		CollateralReturned: collateral,
	}, nil
}

// FinalWithdraw 管理员提取募集资产。仅募集结束后可用，
// 累计提取不能超过 min(totalContributed, raisingAmount)，超募部分留作退款
func (s *Sale) FinalWithdraw(caller string, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.cfg.AdminAddress {
		return ErrUnauthorized
	}
	phase := phaseAt(&s.cfg, s.clock.Now())
	if phase != PhaseClosed && phase != PhaseClaimable {
		return ErrWrongPhase
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	ceiling := new(big.Int).Set(s.totalContributed)
	if s.cfg.RaisingAmount.Cmp(ceiling) < 0 {
		ceiling.Set(s.cfg.RaisingAmount)
	}
	next := new(big.Int).Add(s.totalWithdrawn, amount)
	if next.Cmp(ceiling) > 0 {
		return ErrExceedsWithdrawable
	}
	if err := s.ledger.Transfer(s.cfg.RaiseAsset, s.custody, s.cfg.AdminAddress, amount); err != nil {
		return err
	}
	s.totalWithdrawn.Set(next)
	return nil
}

// SetMaxContribution 管理员调整单人贡献上限，结束前可随时调用。
// 已有贡献不受影响，调低后可能超出新上限
func (s *Sale) SetMaxContribution(caller string, newCap *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.cfg.AdminAddress {
		return ErrUnauthorized
	}
	if !s.clock.Now().Before(s.cfg.EndTime) {
		return ErrWrongPhase
	}
	if newCap == nil || newCap.Sign() <= 0 {
		return ErrInvalidAmount
	}
	s.cfg.MaxContribution.Set(newCap)
	return nil
}

func (s *Sale) participant(address string) *Participant {
	p := s.participants[address]
	if p == nil {
		p = &Participant{Address: address, Contribution: new(big.Int)}
		s.participants[address] = p
		s.order = append(s.order, address)
	}
	return p
}
