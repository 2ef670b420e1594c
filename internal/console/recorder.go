package console

import "sync"

// Entry is one recorded log line.
type Entry struct {
	Level Level
	Msg   string
}

// Recorder is an in-memory Sink that keeps everything it receives.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	Stats    []Snapshot
	Wallets  []WalletView
	Tokens   [][]TokenItem
	Entries  []Entry
	Menu     []string
	Activity []bool
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) UpdateStats(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stats = append(r.Stats, s)
}

func (r *Recorder) UpdateWallet(w WalletView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Wallets = append(r.Wallets, w)
}

func (r *Recorder) SetTokens(items []TokenItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tokens = append(r.Tokens, append([]TokenItem(nil), items...))
}

func (r *Recorder) Log(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg})
}

func (r *Recorder) SetMenu(items []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Menu = append([]string(nil), items...)
}

func (r *Recorder) SetActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Activity = append(r.Activity, active)
}

// LastStats returns the most recent snapshot.
func (r *Recorder) LastStats() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Stats) == 0 {
		return Snapshot{}
	}
	return r.Stats[len(r.Stats)-1]
}

// LastTokens returns the most recent token panel.
func (r *Recorder) LastTokens() []TokenItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Tokens) == 0 {
		return nil
	}
	return r.Tokens[len(r.Tokens)-1]
}

// Logged returns the recorded lines at level.
func (r *Recorder) Logged(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Entries {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}
