// Package console defines what the workflow core pushes to an operator
// console and the events it reads back.
package console

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3flow/internal/config"
)

// Level tags a log line for colouring.
type Level string

const (
	LevelInfo    Level = "info"
	LevelPending Level = "pending"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelGas     Level = "gas"
	LevelBridge  Level = "bridge"
)

// Snapshot is the stats view pushed after every tracked transition.
type Snapshot struct {
	TransactionCount uint64
	SuccessRate      float64
	FailedTx         uint64
	PendingTx        uint64
	CurrentGasPrice  string // gwei, two decimals
}

// SuccessRateText formats SuccessRate with two decimals.
func (s Snapshot) SuccessRateText() string {
	return fmt.Sprintf("%.2f", s.SuccessRate)
}

// WalletView is the wallet panel content.
type WalletView struct {
	Address       string
	NativeBalance string
	Network       string
	GasPrice      string
	Nonce         string
}

// TokenItem is one row of the token panel. Disabled rows are padding.
type TokenItem struct {
	Enabled bool
	Name    string
	Symbol  string
	Balance string
}

// EmptyTokenItem is the placeholder for unused panel rows.
var EmptyTokenItem = TokenItem{Name: "-", Symbol: "-", Balance: "-"}

// PadTokens truncates or pads items to the fixed panel size.
func PadTokens(items []TokenItem) []TokenItem {
	out := make([]TokenItem, 0, config.TokenPanelSlots)
	for _, it := range items {
		if len(out) == config.TokenPanelSlots {
			break
		}
		out = append(out, it)
	}
	for len(out) < config.TokenPanelSlots {
		out = append(out, EmptyTokenItem)
	}
	return out
}

// Sink receives everything the core shows to the operator.
type Sink interface {
	UpdateStats(Snapshot)
	UpdateWallet(WalletView)
	SetTokens([]TokenItem)
	Log(level Level, msg string)
	SetMenu(items []string)
	SetActive(active bool)
}

// Source emits menu selections (zero-based index).
type Source interface {
	Selections() <-chan int
}

// Multi fans every call out to several sinks.
type Multi []Sink

func (m Multi) UpdateStats(s Snapshot) {
	for _, sink := range m {
		sink.UpdateStats(s)
	}
}

func (m Multi) UpdateWallet(w WalletView) {
	for _, sink := range m {
		sink.UpdateWallet(w)
	}
}

func (m Multi) SetTokens(items []TokenItem) {
	for _, sink := range m {
		sink.SetTokens(items)
	}
}

func (m Multi) Log(level Level, msg string) {
	for _, sink := range m {
		sink.Log(level, msg)
	}
}

func (m Multi) SetMenu(items []string) {
	for _, sink := range m {
		sink.SetMenu(items)
	}
}

func (m Multi) SetActive(active bool) {
	for _, sink := range m {
		sink.SetActive(active)
	}
}

// FormatTokens renders the token panel as plain text lines.
func FormatTokens(items []TokenItem) []string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if !it.Enabled {
			continue
		}
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s (%s): %s", it.Name, it.Symbol, it.Balance)))
	}
	return lines
}
