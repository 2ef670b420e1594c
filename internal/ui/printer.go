package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/console"
)

// Printer is the line-oriented console used by headless runs. Log lines
// and panel refreshes are printed as they arrive; stats and menu updates
// are left to the structured log.
type Printer struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

var _ console.Sink = (*Printer)(nil)

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, now: time.Now}
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}

func (p *Printer) Log(level console.Level, msg string) {
	p.println(StyleMeta.Render(p.now().Format("15:04:05")) + " " + LevelStyle(level).Render(msg))
}

func (p *Printer) UpdateWallet(w console.WalletView) {
	p.println(Meta("wallet ") + Addr(w.Address) + "  " + Val(w.NativeBalance) + "  " + StyleGas.Render(w.GasPrice) + Meta("  nonce "+w.Nonce))
}

func (p *Printer) SetTokens(items []console.TokenItem) {
	lines := console.FormatTokens(items)
	if len(lines) == 0 {
		return
	}
	p.println(Meta("tokens ") + strings.Join(lines, Meta(" | ")))
}

func (p *Printer) UpdateStats(console.Snapshot) {}

func (p *Printer) SetMenu([]string) {}

func (p *Printer) SetActive(bool) {}
