package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/SlothFi/ido-launchpad/internal/config"
	"github.com/SlothFi/ido-launchpad/internal/logger"
	"github.com/SlothFi/ido-launchpad/internal/sale"
	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ERC20 ABI（仅用到的方法）
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// Ledger 链上资产账本，实现 sale.AssetLedger。
// 服务地址同时充当所有销售实例的托管账户：参与者先 approve 本服务地址，
// 入金走 transferFrom，出金走 transfer。
type Ledger struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address // 服务（托管）地址
	chainId    *big.Int
	tokens     map[string]common.Address // 资产ID -> ERC20合约地址
	erc20      abi.ABI
}

// Init 初始化链上账本
func Init(cfg config.ChainConfig) (*Ledger, error) {
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	tokens := make(map[string]common.Address, len(cfg.Tokens))
	for id, addr := range cfg.Tokens {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid token address for %s: %s", id, addr)
		}
		tokens[id] = common.HexToAddress(addr)
	}

	return &Ledger{
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainId:    big.NewInt(cfg.ChainId),
		tokens:     tokens,
		erc20:      parsedABI,
	}, nil
}

// Custody 托管地址
func (l *Ledger) Custody() common.Address {
	return l.address
}

// Transfer 实现 sale.AssetLedger。
// from 不是链上地址时视为托管账户别名（引擎用 ido-sale-N 标识托管）
func (l *Ledger) Transfer(asset, from, to string, amount *big.Int) error {
	token, ok := l.tokens[asset]
	if !ok {
		return fmt.Errorf("unknown asset %q", asset)
	}

	ctx := context.Background()

	var input []byte
	var err error
	if common.IsHexAddress(from) && common.HexToAddress(from) != l.address {
		// 入金：参与者 -> 托管，需要事先 approve
		owner := common.HexToAddress(from)
		if err := l.checkFunds(ctx, token, owner, amount, true); err != nil {
			return err
		}
		input, err = l.erc20.Pack("transferFrom", owner, l.address, amount)
	} else {
		// 出金：托管 -> 参与者
		if err := l.checkFunds(ctx, token, l.address, amount, false); err != nil {
			return err
		}
		input, err = l.erc20.Pack("transfer", common.HexToAddress(to), amount)
	}
	if err != nil {
		return fmt.Errorf("failed to pack transfer call: %w", err)
	}

	return l.sendAndWait(ctx, token, input)
}

// checkFunds 发交易前用只读调用检查余额和授权，失败原因对调用方更明确
func (l *Ledger) checkFunds(ctx context.Context, token, owner common.Address, amount *big.Int, needApproval bool) error {
	balance, err := l.callUint(ctx, token, "balanceOf", owner)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return sale.ErrInsufficientFunds
	}
	if needApproval {
		allowance, err := l.callUint(ctx, token, "allowance", owner, l.address)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return sale.ErrNotApproved
		}
	}
	return nil
}

func (l *Ledger) callUint(ctx context.Context, token common.Address, method string, args ...interface{}) (*big.Int, error) {
	input, err := l.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	output, err := l.client.CallContract(ctx, ethereumCallMsg(token, input), nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	values, err := l.erc20.Unpack(method, output)
	if err != nil || len(values) != 1 {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	result, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type", method)
	}
	return result, nil
}

func ethereumCallMsg(to common.Address, data []byte) goethereum.CallMsg {
	return goethereum.CallMsg{To: &to, Data: data}
}

// sendAndWait 签名发送交易并等待上链
func (l *Ledger) sendAndWait(ctx context.Context, token common.Address, input []byte) error {
	nonce, err := l.client.PendingNonceAt(ctx, l.address)
	if err != nil {
		return fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := l.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Value:    big.NewInt(0),
		Gas:      100_000,
		GasPrice: gasPrice,
		Data:     input,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(l.chainId), l.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := l.client.SendTransaction(ctx, signedTx); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, l.client, signedTx)
	if err != nil {
		return fmt.Errorf("failed waiting for transaction %s: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("transaction %s reverted", signedTx.Hash().Hex())
	}

	logger.Debug("Transfer mined: %s", signedTx.Hash().Hex())
	return nil
}
