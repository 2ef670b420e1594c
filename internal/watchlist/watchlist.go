// Package watchlist keeps the deduplicated set of token addresses shown in
// the token panel.
package watchlist

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/Mohsinsiddi/w3flow/internal/store"
	"go.uber.org/zap"
)

// Kind is the token standard of a watched address.
type Kind string

const (
	ERC20  Kind = "erc20"
	ERC721 Kind = "erc721"
)

// ParseKind accepts "erc20"/"erc721" in any case, with or without a dash.
func ParseKind(s string) (Kind, error) {
	switch strings.ReplaceAll(strings.ToLower(s), "-", "") {
	case "erc20":
		return ERC20, nil
	case "erc721":
		return ERC721, nil
	}
	return "", fmt.Errorf("unknown token kind %q (want erc20 or erc721)", s)
}

// Entry is one watched address. Identity is (Kind, lowercase(Address)).
type Entry struct {
	Kind    Kind
	Address string
}

// Lists is the merged watchlist per kind, in display order.
type Lists struct {
	ERC20  []string
	ERC721 []string
}

// Entries flattens l, ERC-20 entries first.
func (l Lists) Entries() []Entry {
	out := make([]Entry, 0, len(l.ERC20)+len(l.ERC721))
	for _, a := range l.ERC20 {
		out = append(out, Entry{Kind: ERC20, Address: a})
	}
	for _, a := range l.ERC721 {
		out = append(out, Entry{Kind: ERC721, Address: a})
	}
	return out
}

// Registry merges static, persisted and last-deployed addresses. It is the
// only writer of the watchlist record.
type Registry struct {
	static config.WatchlistConfig
	store  *store.Store
	logger *zap.Logger

	mu sync.Mutex
}

// New creates a Registry.
func New(static config.WatchlistConfig, st *store.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{static: static, store: st, logger: logger}
}

// Load returns, per kind, the union of the static config, the persisted
// watchlist and the last deployed address, deduplicated case-insensitively.
// Unreadable records are logged and treated as absent.
func (r *Registry) Load() Lists {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Add appends address under kind, re-merges and persists the result.
// Empty addresses are ignored.
func (r *Registry) Add(kind Kind, address string) (Lists, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lists := r.load()
	address = strings.TrimSpace(address)
	if address == "" {
		return lists, nil
	}
	switch kind {
	case ERC20:
		lists.ERC20 = Dedup(lists.ERC20, []string{address})
	case ERC721:
		lists.ERC721 = Dedup(lists.ERC721, []string{address})
	default:
		return lists, fmt.Errorf("unknown token kind %q", kind)
	}

	rec := &store.WatchlistRecord{ERC20: lists.ERC20, ERC721: lists.ERC721}
	if err := r.store.SaveWatchlist(rec); err != nil {
		return lists, fmt.Errorf("failed to persist watchlist: %w", err)
	}
	r.logger.Debug("watchlist updated",
		zap.String("kind", string(kind)),
		zap.String("address", address),
		zap.Int("erc20", len(lists.ERC20)),
		zap.Int("erc721", len(lists.ERC721)))
	return lists, nil
}

func (r *Registry) load() Lists {
	var persisted store.WatchlistRecord
	if rec, err := r.store.LoadWatchlist(); err != nil {
		r.logger.Warn("ignoring unreadable watchlist", zap.Error(err))
	} else if rec != nil {
		persisted = *rec
	}

	var lastERC20, lastNFT []string
	if rec, err := r.store.LoadERC20(); err != nil {
		r.logger.Warn("ignoring unreadable erc20 record", zap.Error(err))
	} else if rec != nil {
		lastERC20 = []string{rec.Address}
	}
	if rec, err := r.store.LoadNFT(); err != nil {
		r.logger.Warn("ignoring unreadable nft record", zap.Error(err))
	} else if rec != nil {
		lastNFT = []string{rec.Address}
	}

	return Lists{
		ERC20:  Dedup(r.static.ERC20, persisted.ERC20, lastERC20),
		ERC721: Dedup(r.static.ERC721, persisted.ERC721, lastNFT),
	}
}

// Dedup concatenates groups and drops empty and case-insensitively
// repeated addresses, keeping the first-seen casing and order.
func Dedup(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, group := range groups {
		for _, addr := range group {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			key := strings.ToLower(addr)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}
