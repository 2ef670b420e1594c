package config

import "time"

// Timeout constants used when a component is built without config.
const (
	TxConfirmTimeout = 3 * time.Minute // receipt wait per transaction
	ReceiptPollEvery = 2 * time.Second
	DialTimeout      = 10 * time.Second // endpoint probe at startup
)

// TokenPanelSlots is the fixed number of rows in the token panel.
const TokenPanelSlots = 10

// State file names, relative to state.dir.
const (
	LastERC20File = "last_deployed_erc20.json"
	LastNFTFile   = "last_deployed_nft.json"
	WatchlistFile = "watchlist.json"
)
