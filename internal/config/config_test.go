package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "w3flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://testnet.rpc.intuition.systems/http", cfg.Network.RPCURL)
	assert.Equal(t, "tTRUST", cfg.Network.NativeSymbol)
	assert.Equal(t, "0x0000000000000000000000000000000000000064", cfg.Network.ArbSys)
	assert.False(t, cfg.Withdraw.Enabled)
	assert.Equal(t, "0.0001", cfg.Withdraw.AmountEth)
	assert.Equal(t, 3, cfg.RandomNative.TxCount)
	assert.Equal(t, 2*time.Second, cfg.RandomNative.Delay)
	assert.True(t, cfg.ERC20.Enabled)
	assert.Equal(t, config.RandomPlaceholder, cfg.ERC20.Name)
	assert.Equal(t, uint8(18), cfg.ERC20.Decimals)
	assert.Equal(t, "1000000", cfg.ERC20.Supply)
	assert.Equal(t, "250", cfg.ERC20.AutoSend.AmountPerTx)
	assert.Equal(t, int64(333), cfg.NFT.Supply)
	assert.Equal(t, int64(100), cfg.NFT.MintChunk)
	assert.Equal(t, "RND", cfg.NFT.Symbol)
	assert.Equal(t, 3*time.Second, cfg.ERC20.AutoSend.Delay)
	assert.Equal(t, 4*time.Second, cfg.NFT.AutoSend.Delay)
	assert.Equal(t, uint64(20), cfg.Gas.MarginPercent)
	assert.Equal(t, uint64(6_000_000), cfg.Gas.NFTDeploy)
	assert.Equal(t, "", cfg.Path())
}

func TestDefaultMatchesLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, config.Default())
}

func TestLoadExplicitMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// overrides
// ---------------------------------------------------------------------------

func TestLoadOverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
network:
  rpc_url: http://127.0.0.1:8545
  native_symbol: ETH
erc20:
  enabled: false
  auto_send:
    tx_count: 2
nft:
  supply: 50
  auto_send:
    delay: 500ms
watchlist:
  erc20:
    - "0x1111111111111111111111111111111111111111"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "http://127.0.0.1:8545", cfg.Network.RPCURL)
	assert.False(t, cfg.ERC20.Enabled)
	assert.Equal(t, 2, cfg.ERC20.AutoSend.TxCount)
	assert.Equal(t, "250", cfg.ERC20.AutoSend.AmountPerTx)
	assert.Equal(t, int64(50), cfg.NFT.Supply)
	assert.Equal(t, int64(50), cfg.NFT.MintChunk, "chunk is clamped to supply")
	assert.Equal(t, 500*time.Millisecond, cfg.NFT.AutoSend.Delay)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111"}, cfg.Watchlist.ERC20)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad url", "network:\n  rpc_url: not a url\n"},
		{"bad watchlist address", "watchlist:\n  erc721: [\"0x123\"]\n"},
		{"zero nft supply", "nft:\n  supply: 0\n"},
		{"bad amount", "withdraw:\n  amount_eth: lots\n"},
		{"bad log level", "logging:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "network: [unterminated"))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestStatePath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.State.Dir = "/var/lib/w3flow"
	assert.Equal(t, "/var/lib/w3flow/watchlist.json", cfg.StatePath(config.WatchlistFile))
}

func TestSaveAndReload(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Network.Label = "devnet"
	cfg.NFT.Supply = 10

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "devnet", reloaded.Network.Label)
	assert.Equal(t, int64(10), reloaded.NFT.Supply)
}

func TestNewLogger(t *testing.T) {
	out := filepath.Join(t.TempDir(), "w3flow.log")
	logger, err := config.NewLogger(config.LoggingConfig{Level: "debug", Format: "json", OutputPath: out})
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := config.NewLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
