package sale

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerTransfer(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Mint("WONE", alice, big.NewInt(100))

	// 未授权转出
	err := ledger.Transfer("WONE", alice, bob, big.NewInt(10))
	assert.ErrorIs(t, err, ErrNotApproved)

	ledger.Approve("WONE", alice)
	require.NoError(t, ledger.Transfer("WONE", alice, bob, big.NewInt(10)))
	assert.Equal(t, int64(90), ledger.BalanceOf("WONE", alice).Int64())
	assert.Equal(t, int64(10), ledger.BalanceOf("WONE", bob).Int64())

	// 余额不足
	err = ledger.Transfer("WONE", alice, bob, big.NewInt(1_000))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(90), ledger.BalanceOf("WONE", alice).Int64())

	// 授权按资产隔离
	err = ledger.Transfer("GME", alice, bob, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotApproved)
}
