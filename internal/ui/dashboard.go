package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/console"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogCapacity is the number of log lines the console keeps.
const LogCapacity = 200

const (
	defaultLogRows = 12
	tickEvery      = 120 * time.Millisecond
)

// ── messages ──────────────────────────────────────────────────────────────

type tickMsg time.Time

type statsMsg console.Snapshot

type walletMsg console.WalletView

type tokensMsg []console.TokenItem

type menuMsg []string

type activeMsg bool

type logMsg struct {
	at    time.Time
	level console.Level
	text  string
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ── model ─────────────────────────────────────────────────────────────────

type model struct {
	title      string
	stats      console.Snapshot
	wallet     console.WalletView
	tokens     []console.TokenItem
	menu       []string
	cursor     int
	logs       []logMsg
	active     bool
	frame      int
	width      int
	height     int
	selections chan<- int
	dropped    int
}

func newModel(title string, selections chan<- int) model {
	return model{
		title:      title,
		tokens:     console.PadTokens(nil),
		selections: selections,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if m.active {
			m.frame++
		}
		return m, tick()
	case statsMsg:
		m.stats = console.Snapshot(msg)
	case walletMsg:
		m.wallet = console.WalletView(msg)
	case tokensMsg:
		m.tokens = console.PadTokens(msg)
	case menuMsg:
		m.menu = append([]string(nil), msg...)
		if m.cursor >= len(m.menu) {
			m.cursor = 0
		}
	case activeMsg:
		m.active = bool(msg)
	case logMsg:
		m.logs = append(m.logs, msg)
		if over := len(m.logs) - LogCapacity; over > 0 {
			m.logs = append(m.logs[:0:0], m.logs[over:]...)
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu)-1 {
			m.cursor++
		}
	case "enter":
		m.selectItem(m.cursor)
	default:
		// digits pick a menu entry directly
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			idx := int(s[0] - '1')
			if idx < len(m.menu) {
				m.cursor = idx
				m.selectItem(idx)
			}
		}
	}
	return m, nil
}

// selectItem forwards a selection without blocking the render loop. The
// dispatcher rejects overlapping runs itself; a full channel drops the press.
func (m *model) selectItem(idx int) {
	if len(m.menu) == 0 || m.selections == nil {
		return
	}
	select {
	case m.selections <- idx:
	default:
		m.dropped++
	}
}

// ── view ──────────────────────────────────────────────────────────────────

func (m model) View() string {
	header := Banner()
	if m.title != "" {
		header += "  " + StyleChain.Render(m.title)
	}
	header += "  " + m.busyText()

	left := lipgloss.JoinVertical(lipgloss.Left, m.menuView(), m.statsView())
	right := lipgloss.JoinVertical(lipgloss.Left, m.walletView(), m.tokensView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	controls := StyleDim.Render("↑/↓ navigate • enter run • 1-9 quick select • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.logView(), controls) + "\n"
}

var spinFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m model) busyText() string {
	if !m.active {
		return StyleSuccess.Render("● idle")
	}
	return StyleWarning.Render(spinFrames[m.frame%len(spinFrames)] + " running")
}

func (m model) menuView() string {
	var sb strings.Builder
	sb.WriteString(StyleHeader.Render("Workflows"))
	sb.WriteString("\n")
	if len(m.menu) == 0 {
		sb.WriteString(StyleDim.Render("(no workflows)"))
	}
	for i, line := range m.menu {
		if i == m.cursor {
			sb.WriteString(StyleSelected.Render("▶ " + line))
		} else {
			sb.WriteString("  " + line)
		}
		if i < len(m.menu)-1 {
			sb.WriteString("\n")
		}
	}
	return StyleBorder.Render(sb.String())
}

func (m model) statsView() string {
	return KeyValueBlock("Stats", [][2]string{
		{"Transactions", fmt.Sprintf("%d", m.stats.TransactionCount)},
		{"Success rate", m.stats.SuccessRateText() + "%"},
		{"Failed", fmt.Sprintf("%d", m.stats.FailedTx)},
		{"Pending", fmt.Sprintf("%d", m.stats.PendingTx)},
		{"Gas price", orDash(m.stats.CurrentGasPrice) + " gwei"},
	})
}

func (m model) walletView() string {
	return KeyValueBlock("Wallet", [][2]string{
		{"Address", orDash(m.wallet.Address)},
		{"Balance", orDash(m.wallet.NativeBalance)},
		{"Network", orDash(m.wallet.Network)},
		{"Gas price", orDash(m.wallet.GasPrice)},
		{"Nonce", orDash(m.wallet.Nonce)},
	})
}

func (m model) tokensView() string {
	tbl := NewTable([]Column{
		{Title: "Name", Width: 18},
		{Title: "Symbol", Width: 8},
		{Title: "Balance", Width: 22, Right: true},
	})
	tbl.Dim = make(map[int]bool)
	for i, it := range m.tokens {
		tbl.Dim[i] = !it.Enabled
		tbl.AddRow(Row{it.Name, it.Symbol, it.Balance})
	}
	return StyleBorder.Render(StyleTitle.Render("Tokens") + "\n" + strings.TrimRight(tbl.Render(), "\n"))
}

func (m model) logRows() int {
	// header, body and controls take roughly 26 rows
	if m.height > 26+defaultLogRows {
		return m.height - 26
	}
	return defaultLogRows
}

func (m model) logView() string {
	rows := m.logRows()
	start := 0
	if len(m.logs) > rows {
		start = len(m.logs) - rows
	}
	lines := make([]string, 0, rows)
	for _, l := range m.logs[start:] {
		ts := StyleMeta.Render(l.at.Format("15:04:05"))
		lines = append(lines, ts+" "+LevelStyle(l.level).Render(l.text))
	}
	if len(lines) == 0 {
		lines = append(lines, StyleDim.Render("waiting for activity…"))
	}
	return StyleBorder.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── program wrapper ───────────────────────────────────────────────────────

// Dashboard is the interactive operator console. It implements console.Sink
// and console.Source; panel updates are delivered to the bubbletea program.
type Dashboard struct {
	program    *tea.Program
	selections chan int
	now        func() time.Time
}

// NewDashboard builds a console titled with the network label.
func NewDashboard(title string, opts ...tea.ProgramOption) *Dashboard {
	sel := make(chan int, 4)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Dashboard{
		program:    tea.NewProgram(newModel(title, sel), opts...),
		selections: sel,
		now:        time.Now,
	}
}

// Run blocks until the operator quits. The selection channel is closed on
// return so the dispatcher stops.
func (d *Dashboard) Run() error {
	defer close(d.selections)
	_, err := d.program.Run()
	return err
}

// Selections implements console.Source.
func (d *Dashboard) Selections() <-chan int { return d.selections }

func (d *Dashboard) UpdateStats(s console.Snapshot) { d.program.Send(statsMsg(s)) }

func (d *Dashboard) UpdateWallet(w console.WalletView) { d.program.Send(walletMsg(w)) }

func (d *Dashboard) SetTokens(items []console.TokenItem) {
	d.program.Send(tokensMsg(append([]console.TokenItem(nil), items...)))
}

func (d *Dashboard) Log(level console.Level, msg string) {
	d.program.Send(logMsg{at: d.now(), level: level, text: msg})
}

func (d *Dashboard) SetMenu(items []string) {
	d.program.Send(menuMsg(append([]string(nil), items...)))
}

func (d *Dashboard) SetActive(active bool) { d.program.Send(activeMsg(active)) }

var (
	_ console.Sink   = (*Dashboard)(nil)
	_ console.Source = (*Dashboard)(nil)
)
