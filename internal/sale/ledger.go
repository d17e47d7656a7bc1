package sale

import (
	"math/big"
	"sync"
	"time"
)

// AssetLedger 资产账本，销售实例对余额的唯一事实来源。
// Transfer 同步执行，要么全部成功要么返回错误，内部不重试。
type AssetLedger interface {
	Transfer(asset, from, to string, amount *big.Int) error
}

// Clock 时间源，链上环境对应区块时间
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系统时间
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MemoryLedger 内存账本，用于开发和测试。
// approve 语义与 ERC20 对齐：从 from 转出到第三方账户需要事先授权。
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]*big.Int // asset -> account -> balance
	approved map[string]map[string]bool     // asset -> account -> 是否已授权
}

// NewMemoryLedger 创建内存账本
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]map[string]*big.Int),
		approved: make(map[string]map[string]bool),
	}
}

// Mint 给账户铸造余额（仅测试/开发用）
func (l *MemoryLedger) Mint(asset, account string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(asset, account, amount)
}

// Approve 授权从该账户转出
func (l *MemoryLedger) Approve(asset, account string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.approved[asset] == nil {
		l.approved[asset] = make(map[string]bool)
	}
	l.approved[asset][account] = true
}

// Transfer 实现 AssetLedger
func (l *MemoryLedger) Transfer(asset, from, to string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.approved[asset][from] {
		return ErrNotApproved
	}
	bal := l.balanceOf(asset, from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	bal.Sub(bal, amount)
	l.credit(asset, to, amount)
	return nil
}

// BalanceOf 查询余额
func (l *MemoryLedger) BalanceOf(asset, account string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceOf(asset, account))
}

func (l *MemoryLedger) balanceOf(asset, account string) *big.Int {
	if l.balances[asset] == nil {
		l.balances[asset] = make(map[string]*big.Int)
	}
	if l.balances[asset][account] == nil {
		l.balances[asset][account] = new(big.Int)
	}
	return l.balances[asset][account]
}

func (l *MemoryLedger) credit(asset, account string, amount *big.Int) {
	bal := l.balanceOf(asset, account)
	bal.Add(bal, amount)
}
