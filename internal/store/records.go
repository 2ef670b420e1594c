package store

// ERC20Record is the last deployed fungible token.
type ERC20Record struct {
	Version  int    `json:"version"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// NFTRecord is the last deployed collection and its distribution cursor.
// NextToSend is the next token id to consider; it only moves forward.
type NFTRecord struct {
	Version     int    `json:"version"`
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	TotalSupply int64  `json:"totalSupply"`
	NextToSend  int64  `json:"nextToSend"`
}

// Exhausted reports whether the cursor has passed the last token id.
func (r *NFTRecord) Exhausted() bool {
	return r.NextToSend > r.TotalSupply
}

// WatchlistRecord is the persisted set of observed token addresses.
type WatchlistRecord struct {
	Version int      `json:"version"`
	ERC20   []string `json:"erc20"`
	ERC721  []string `json:"erc721"`
}

// Records written before versioning carry no version field.

func (r *ERC20Record) migrate() {
	if r.Version == 0 {
		r.Version = 1
	}
}

func (r *NFTRecord) migrate() {
	if r.Version == 0 {
		r.Version = 1
	}
	if r.NextToSend < 1 {
		r.NextToSend = 1
	}
}

func (r *WatchlistRecord) migrate() {
	if r.Version == 0 {
		r.Version = 1
	}
}
