package sale

import (
	"fmt"
	"math/big"
	"sync"
)

// Registry 销售实例工厂兼索引。创建后不再干预实例内部状态，
// 列表按创建顺序只增不减
type Registry struct {
	mu     sync.RWMutex
	ledger AssetLedger
	clock  Clock
	nextID int64
	sales  []*Sale
	byID   map[int64]*Sale
}

// NewRegistry 创建注册表
func NewRegistry(ledger AssetLedger, clock Clock) *Registry {
	return &Registry{
		ledger: ledger,
		clock:  clock,
		nextID: 1,
		byID:   make(map[int64]*Sale),
	}
}

// CreateSale 校验配置并创建销售实例
func (r *Registry) CreateSale(cfg Config) (*Sale, error) {
	if cfg.CollateralPolicy == "" {
		cfg.CollateralPolicy = CollateralRefund
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	s := newSale(id, custodyAccount(id), cfg, r.ledger, r.clock)
	r.sales = append(r.sales, s)
	r.byID[id] = s
	return s, nil
}

// AdoptSale 以指定编号重建实例（服务重启时从存档恢复用）
func (r *Registry) AdoptSale(id int64, cfg Config) (*Sale, error) {
	if cfg.CollateralPolicy == "" {
		cfg.CollateralPolicy = CollateralRefund
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; ok {
		return nil, fmt.Errorf("sale %d already registered", id)
	}
	if id >= r.nextID {
		r.nextID = id + 1
	}
	s := newSale(id, custodyAccount(id), cfg, r.ledger, r.clock)
	r.sales = append(r.sales, s)
	r.byID[id] = s
	return s, nil
}

// Sales 按创建顺序返回全部实例
func (r *Registry) Sales() []*Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Sale, len(r.sales))
	copy(out, r.sales)
	return out
}

// Get 按编号查询实例
func (r *Registry) Get(id int64) (*Sale, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

func custodyAccount(id int64) string {
	return fmt.Sprintf("ido-sale-%d", id)
}

// RestoreParticipant 恢复参与者记录，贡献额同步计入总额。仅重建时使用
func (s *Sale) RestoreParticipant(address string, collateral bool, contribution *big.Int, harvested bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.participant(address)
	p.CollateralDeposited = collateral
	if contribution != nil && contribution.Sign() > 0 {
		s.totalContributed.Add(s.totalContributed, contribution)
		p.Contribution.Add(p.Contribution, contribution)
	}
	p.Harvested = harvested
}

// RestoreWithdrawn 恢复管理员已提取金额。仅重建时使用
func (s *Sale) RestoreWithdrawn(amount *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount != nil {
		s.totalWithdrawn.Set(amount)
	}
}
