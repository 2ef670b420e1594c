package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EVMClient is the go-ethereum backed Client. It signs EIP-1559
// transactions with a single private key.
type EVMClient struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int

	pollEvery      time.Duration
	confirmTimeout time.Duration
	logger         *zap.Logger
}

var _ Client = (*EVMClient)(nil)

// Option configures an EVMClient.
type Option func(*EVMClient)

// WithChainID skips the eth_chainId lookup.
func WithChainID(id int64) Option {
	return func(c *EVMClient) {
		if id > 0 {
			c.chainID = big.NewInt(id)
		}
	}
}

// WithReceiptPolling sets how often and how long WaitForReceipt polls.
func WithReceiptPolling(every, timeout time.Duration) Option {
	return func(c *EVMClient) {
		if every > 0 {
			c.pollEvery = every
		}
		if timeout > 0 {
			c.confirmTimeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *EVMClient) { c.logger = l }
}

// Dial connects to rpcURL and resolves the chain id. An unreachable
// endpoint fails here rather than on the first transaction.
func Dial(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey, opts ...Option) (*EVMClient, error) {
	if key == nil {
		return nil, errors.New("private key is required")
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	c := &EVMClient{
		eth:            eth,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		pollEvery:      config.ReceiptPollEvery,
		confirmTimeout: config.TxConfirmTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chainID == nil {
		id, err := eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("failed to get chain ID: %w", err)
		}
		c.chainID = id
	}

	c.logger.Info("connected to endpoint",
		zap.String("rpc_url", rpcURL),
		zap.String("chain_id", c.chainID.String()),
		zap.String("address", c.from.Hex()))
	return c, nil
}

// Close releases the underlying connection.
func (c *EVMClient) Close() { c.eth.Close() }

// Address returns the signing account.
func (c *EVMClient) Address() common.Address { return c.from }

// ChainID returns the chain id used for signing.
func (c *EVMClient) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// BalanceAt returns the latest native balance of account.
func (c *EVMClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return bal, nil
}

// FeeData returns fee suggestions. MaxFeePerGas follows the usual wallet
// rule of twice the base fee plus the tip.
func (c *EVMClient) FeeData(ctx context.Context) (*FeeData, error) {
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil || tip.Cmp(gasPrice) > 0 {
		// Legacy nodes without eth_maxPriorityFeePerGas.
		tip = new(big.Int).Set(gasPrice)
	}
	baseFee := new(big.Int).Sub(gasPrice, tip)
	maxFee := new(big.Int).Add(new(big.Int).Mul(baseFee, big.NewInt(2)), tip)

	return &FeeData{
		GasPrice:             gasPrice,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
	}, nil
}

// NonceAt returns the confirmed transaction count of the signing account.
func (c *EVMClient) NonceAt(ctx context.Context) (uint64, error) {
	n, err := c.eth.NonceAt(ctx, c.from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get nonce: %w", err)
	}
	return n, nil
}

// EstimateGas simulates req from the signing account.
func (c *EVMClient) EstimateGas(ctx context.Context, req Request) (uint64, error) {
	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.from,
		To:    req.To,
		Value: req.Value,
		Data:  req.Data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return gas, nil
}

// Send signs and broadcasts req and returns its hash without waiting for
// inclusion. A zero GasLimit is filled by an unpadded estimate.
func (c *EVMClient) Send(ctx context.Context, req Request) (common.Hash, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	fees, err := c.FeeData(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	gas := req.GasLimit
	if gas == 0 {
		if gas, err = c.EstimateGas(ctx, req); err != nil {
			return common.Hash{}, err
		}
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: fees.MaxPriorityFeePerGas,
		GasFeeCap: fees.MaxFeePerGas,
		Gas:       gas,
		To:        req.To,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Debug("transaction broadcast",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed.Hash(), nil
}

// WaitForReceipt polls until the transaction is mined or the confirm
// timeout expires. A reverted receipt is returned together with ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		r, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			receipt := toReceipt(r)
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			// still pending
		case ctx.Err() != nil:
			// fall through to the deadline check below
		default:
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s within %s", ErrNotMined, hash.Hex(), c.confirmTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Call runs a read-only contract call against the latest block.
func (c *EVMClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: c.from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", to.Hex(), err)
	}
	return out, nil
}

func toReceipt(r *types.Receipt) *Receipt {
	out := &Receipt{
		Hash:            r.TxHash,
		Status:          r.Status,
		GasUsed:         r.GasUsed,
		ContractAddress: r.ContractAddress,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	if r.EffectiveGasPrice != nil && r.EffectiveGasPrice.Sign() > 0 {
		out.EffectiveGasPrice = new(big.Int).Set(r.EffectiveGasPrice)
	}
	return out
}
