// Package contracttest provides an in-memory chain.Client that understands
// the built-in token contracts, plus a fake compiler producing artifacts the
// simulator recognises.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrCallReverted is returned by Call when the view would revert.
var ErrCallReverted = errors.New("execution reverted")

// DefaultGasPrice is the effective gas price on every receipt (2 gwei).
var DefaultGasPrice = big.NewInt(2_000_000_000)

type pendingTx struct {
	req   chain.Request
	nonce uint64
}

type erc20State struct {
	name, symbol string
	decimals     uint8
	supply       *big.Int
	balances     map[common.Address]*big.Int
}

type erc721State struct {
	name, symbol string
	owner        common.Address
	maxSupply    int64
	minted       int64
	owners       map[int64]common.Address
	balances     map[common.Address]int64
}

// Sim is a single-account chain. Effects of a request are applied when its
// receipt is fetched; requests the built-in contracts would reject produce
// a reverted receipt.
type Sim struct {
	From common.Address

	// Estimate is returned by EstimateGas when EstimateErr is nil.
	Estimate    uint64
	EstimateErr error
	// SendFunc and ReceiptFunc can fail the n-th (zero-based) send or
	// receipt wait.
	SendFunc    func(n int, req chain.Request) error
	ReceiptFunc func(n int, req chain.Request) error
	// CallFunc can fail a view call by method name.
	CallFunc func(to common.Address, method string) error

	Fees *chain.FeeData

	mu       sync.Mutex
	native   map[common.Address]*big.Int
	erc20    map[common.Address]*erc20State
	erc721   map[common.Address]*erc721State
	sent     []chain.Request
	pending  map[common.Hash]pendingTx
	nonce    uint64
	attempts int
	receipts int
	calls    int
}

var _ chain.Client = (*Sim)(nil)

// NewSim returns a simulator whose account holds 100 native units.
func NewSim() *Sim {
	from := common.HexToAddress("0x00000000000000000000000000000000000A11CE")
	s := &Sim{
		From:     from,
		Estimate: 50_000,
		Fees: &chain.FeeData{
			GasPrice:             big.NewInt(1_000_000_000),
			MaxFeePerGas:         big.NewInt(3_000_000_000),
			MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		},
		native:  map[common.Address]*big.Int{},
		erc20:   map[common.Address]*erc20State{},
		erc721:  map[common.Address]*erc721State{},
		pending: map[common.Hash]pendingTx{},
	}
	s.native[from] = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	return s
}

// Sent returns a copy of every request that reached Send successfully.
func (s *Sim) Sent() []chain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chain.Request(nil), s.sent...)
}

// Calls returns the number of view calls served.
func (s *Sim) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// NativeBalance returns the native balance of account.
func (s *Sim) NativeBalance(account common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance(account)
}

// ERC20Balance returns the token balance of holder, nil for unknown tokens.
func (s *Sim) ERC20Balance(token, holder common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.erc20[token]
	if !ok {
		return nil
	}
	return new(big.Int).Set(bigOrZero(st.balances[holder]))
}

// Minted returns how many ids the collection has minted.
func (s *Sim) Minted(collection common.Address) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.erc721[collection]; ok {
		return st.minted
	}
	return 0
}

// SetOwner forces the owner of an already minted id, e.g. to simulate a
// token sent away out of band.
func (s *Sim) SetOwner(collection common.Address, id int64, owner common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.erc721[collection]
	prev := st.owners[id]
	st.balances[prev]--
	st.owners[id] = owner
	st.balances[owner]++
}

// AddERC20 installs a token directly, holding supply for From.
func (s *Sim) AddERC20(addr common.Address, name, symbol string, decimals uint8, supply *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.erc20[addr] = &erc20State{
		name: name, symbol: symbol, decimals: decimals,
		supply:   new(big.Int).Set(supply),
		balances: map[common.Address]*big.Int{s.From: new(big.Int).Set(supply)},
	}
}

// AddERC721 installs a collection with ids 1..minted owned by From.
func (s *Sim) AddERC721(addr common.Address, name, symbol string, maxSupply, minted int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := &erc721State{
		name: name, symbol: symbol, owner: s.From, maxSupply: maxSupply,
		owners: map[int64]common.Address{}, balances: map[common.Address]int64{},
	}
	for id := int64(1); id <= minted; id++ {
		st.owners[id] = s.From
	}
	st.minted = minted
	st.balances[s.From] = minted
	s.erc721[addr] = st
}

func (s *Sim) Address() common.Address { return s.From }

func (s *Sim) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	return s.NativeBalance(account), nil
}

func (s *Sim) FeeData(context.Context) (*chain.FeeData, error) {
	return s.Fees, nil
}

func (s *Sim) NonceAt(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce, nil
}

func (s *Sim) EstimateGas(context.Context, chain.Request) (uint64, error) {
	if s.EstimateErr != nil {
		return 0, s.EstimateErr
	}
	return s.Estimate, nil
}

func (s *Sim) Send(_ context.Context, req chain.Request) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.attempts
	s.attempts++
	if s.SendFunc != nil {
		if err := s.SendFunc(n, req); err != nil {
			return common.Hash{}, err
		}
	}
	hash := crypto.Keccak256Hash(s.From.Bytes(), new(big.Int).SetUint64(s.nonce).Bytes())
	s.pending[hash] = pendingTx{req: req, nonce: s.nonce}
	s.nonce++
	s.sent = append(s.sent, req)
	return hash, nil
}

func (s *Sim) WaitForReceipt(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.pending[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrNotMined, hash.Hex())
	}
	delete(s.pending, hash)
	n := s.receipts
	s.receipts++
	if s.ReceiptFunc != nil {
		if err := s.ReceiptFunc(n, tx.req); err != nil {
			return nil, err
		}
	}

	receipt := &chain.Receipt{
		Hash:              hash,
		Status:            1,
		BlockNumber:       uint64(n + 1),
		GasUsed:           21_000,
		EffectiveGasPrice: new(big.Int).Set(DefaultGasPrice),
	}
	created, err := s.execute(tx.req, tx.nonce)
	if err != nil {
		receipt.Status = 0
		return receipt, fmt.Errorf("%w (hash: %s): %v", chain.ErrReverted, hash.Hex(), err)
	}
	receipt.ContractAddress = created
	return receipt, nil
}

func (s *Sim) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(data) < 4 {
		return nil, ErrCallReverted
	}
	if st, ok := s.erc20[to]; ok {
		return s.callERC20(to, st, data)
	}
	if st, ok := s.erc721[to]; ok {
		return s.callERC721(to, st, data)
	}
	return nil, fmt.Errorf("%w: no contract at %s", ErrCallReverted, to.Hex())
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// execute applies req and returns the created contract address, if any.
// Native value moves only when the call succeeds.
func (s *Sim) execute(req chain.Request, nonce uint64) (common.Address, error) {
	value := bigOrZero(req.Value)
	bal := s.balance(s.From)
	if bal.Cmp(value) < 0 {
		return common.Address{}, errors.New("insufficient funds")
	}

	var created common.Address
	var err error
	switch {
	case req.IsDeploy():
		created = crypto.CreateAddress(s.From, nonce)
		err = s.deploy(created, req.Data)
	case len(req.Data) == 0:
		s.native[*req.To] = new(big.Int).Add(s.balance(*req.To), value)
	default:
		err = s.invoke(*req.To, req.Data)
	}
	if err != nil {
		return common.Address{}, err
	}
	s.native[s.From] = new(big.Int).Sub(s.balance(s.From), value)
	return created, nil
}

func (s *Sim) invoke(to common.Address, data []byte) error {
	if st, ok := s.erc20[to]; ok {
		return s.execERC20(st, data)
	}
	if st, ok := s.erc721[to]; ok {
		return s.execERC721(st, data)
	}
	if len(data) >= 4 {
		if method, err := contract.ArbSys.ABI.MethodById(data[:4]); err == nil && method.Name == "withdrawEth" {
			return nil
		}
	}
	return fmt.Errorf("no contract at %s", to.Hex())
}

func (s *Sim) deploy(addr common.Address, data []byte) error {
	switch {
	case hasPrefix(data, erc20Code):
		args, err := contract.ERC20.ABI.Constructor.Inputs.Unpack(data[len(erc20Code):])
		if err != nil {
			return err
		}
		supply := args[3].(*big.Int)
		s.erc20[addr] = &erc20State{
			name: args[0].(string), symbol: args[1].(string), decimals: args[2].(uint8),
			supply:   new(big.Int).Set(supply),
			balances: map[common.Address]*big.Int{s.From: new(big.Int).Set(supply)},
		}
	case hasPrefix(data, erc721Code):
		args, err := contract.ERC721.ABI.Constructor.Inputs.Unpack(data[len(erc721Code):])
		if err != nil {
			return err
		}
		maxSupply := args[2].(*big.Int)
		if maxSupply.Sign() <= 0 {
			return errors.New("max=0")
		}
		s.erc721[addr] = &erc721State{
			name: args[0].(string), symbol: args[1].(string), owner: s.From,
			maxSupply: maxSupply.Int64(),
			owners:    map[int64]common.Address{}, balances: map[common.Address]int64{},
		}
	default:
		return errors.New("unknown creation code")
	}
	return nil
}

func (s *Sim) execERC20(st *erc20State, data []byte) error {
	method, args, err := unpackCall(contract.ERC20.ABI, data)
	if err != nil {
		return err
	}
	if method.Name != "transfer" {
		return fmt.Errorf("%s is not a transaction", method.Name)
	}
	to, val := args[0].(common.Address), args[1].(*big.Int)
	if to == (common.Address{}) {
		return errors.New("zero")
	}
	bal := bigOrZero(st.balances[s.From])
	if bal.Cmp(val) < 0 {
		return errors.New("bal")
	}
	st.balances[s.From] = new(big.Int).Sub(bal, val)
	st.balances[to] = new(big.Int).Add(bigOrZero(st.balances[to]), val)
	return nil
}

func (s *Sim) execERC721(st *erc721State, data []byte) error {
	method, args, err := unpackCall(contract.ERC721.ABI, data)
	if err != nil {
		return err
	}
	switch method.Name {
	case "ownerMintBatch":
		count := args[0].(*big.Int).Int64()
		if s.From != st.owner {
			return errors.New("not owner")
		}
		if count <= 0 {
			return errors.New("count=0")
		}
		if st.minted+count > st.maxSupply {
			return errors.New("exceeds")
		}
		for id := st.minted + 1; id <= st.minted+count; id++ {
			st.owners[id] = s.From
		}
		st.minted += count
		st.balances[s.From] += count
	case "transferFrom":
		from, to := args[0].(common.Address), args[1].(common.Address)
		id := args[2].(*big.Int).Int64()
		owner, ok := st.owners[id]
		if !ok {
			return errors.New("nonexistent")
		}
		if owner != s.From || owner != from {
			return errors.New("not allowed")
		}
		if to == (common.Address{}) {
			return errors.New("zero")
		}
		st.owners[id] = to
		st.balances[from]--
		st.balances[to]++
	default:
		return fmt.Errorf("%s is not a transaction", method.Name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func (s *Sim) callERC20(to common.Address, st *erc20State, data []byte) ([]byte, error) {
	method, args, err := unpackCall(contract.ERC20.ABI, data)
	if err != nil {
		return nil, err
	}
	if err := s.callHook(to, method.Name); err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack(st.name)
	case "symbol":
		return method.Outputs.Pack(st.symbol)
	case "decimals":
		return method.Outputs.Pack(st.decimals)
	case "totalSupply":
		return method.Outputs.Pack(st.supply)
	case "balanceOf":
		return method.Outputs.Pack(bigOrZero(st.balances[args[0].(common.Address)]))
	}
	return nil, fmt.Errorf("%w: %s is not a view", ErrCallReverted, method.Name)
}

func (s *Sim) callERC721(to common.Address, st *erc721State, data []byte) ([]byte, error) {
	method, args, err := unpackCall(contract.ERC721.ABI, data)
	if err != nil {
		return nil, err
	}
	if err := s.callHook(to, method.Name); err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack(st.name)
	case "symbol":
		return method.Outputs.Pack(st.symbol)
	case "totalSupply":
		return method.Outputs.Pack(big.NewInt(st.minted))
	case "balanceOf":
		return method.Outputs.Pack(big.NewInt(st.balances[args[0].(common.Address)]))
	case "ownerOf":
		owner, ok := st.owners[args[0].(*big.Int).Int64()]
		if !ok {
			return nil, fmt.Errorf("%w: nonexistent", ErrCallReverted)
		}
		return method.Outputs.Pack(owner)
	}
	return nil, fmt.Errorf("%w: %s is not a view", ErrCallReverted, method.Name)
}

func (s *Sim) callHook(to common.Address, method string) error {
	if s.CallFunc == nil {
		return nil
	}
	return s.CallFunc(to, method)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Sim) balance(account common.Address) *big.Int {
	return new(big.Int).Set(bigOrZero(s.native[account]))
}

func unpackCall(parsed abi.ABI, data []byte) (*abi.Method, []interface{}, error) {
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unknown selector", ErrCallReverted)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func hasPrefix(data, prefix []byte) bool {
	return len(data) >= len(prefix) && string(data[:len(prefix)]) == string(prefix)
}
