package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// absence
// ---------------------------------------------------------------------------

func TestLoadMissingRecordsReturnNil(t *testing.T) {
	s := New(t.TempDir())

	erc20, err := s.LoadERC20()
	require.NoError(t, err)
	assert.Nil(t, erc20)

	nft, err := s.LoadNFT()
	require.NoError(t, err)
	assert.Nil(t, nft)

	wl, err := s.LoadWatchlist()
	require.NoError(t, err)
	assert.Nil(t, wl)
}

// ---------------------------------------------------------------------------
// write / overwrite
// ---------------------------------------------------------------------------

func TestSaveNFTOverwrites(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.SaveNFT(&NFTRecord{Address: "0xabc", Name: "NFT-ABC123", TotalSupply: 333, NextToSend: 1}))
	require.NoError(t, s.SaveNFT(&NFTRecord{Address: "0xabc", Name: "NFT-ABC123", TotalSupply: 333, NextToSend: 6}))

	got, err := s.LoadNFT()
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.NextToSend)
	assert.Equal(t, CurrentVersion, got.Version)
	assert.False(t, got.Exhausted())
}

func TestSaveCreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state", "nested")
	s := New(dir)
	require.NoError(t, s.SaveERC20(&ERC20Record{Address: "0x1", Name: "Token-ABC123", Symbol: "ABC", Decimals: 18}))

	info, err := os.Stat(filepath.Join(dir, "last_deployed_erc20.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWatchlistFileLayout(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.SaveWatchlist(&WatchlistRecord{ERC20: []string{"0xA"}, ERC721: []string{}}))

	data, err := os.ReadFile(filepath.Join(dir, "watchlist.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"erc20":["0xA"],"erc721":[]}`, string(data))
}

// ---------------------------------------------------------------------------
// legacy records
// ---------------------------------------------------------------------------

func TestLoadLegacyNFTRecordDefaultsCursor(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"address":"0xdef","totalSupply":333}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "last_deployed_nft.json"), []byte(legacy), 0o600))

	got, err := New(dir).LoadNFT()
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, int64(1), got.NextToSend)
	assert.Equal(t, int64(333), got.TotalSupply)
}

func TestLoadLegacyERC20Record(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"address":"0x1","name":"Token-XYZ100","symbol":"XYZ","decimals":6}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "last_deployed_erc20.json"), []byte(legacy), 0o600))

	got, err := New(dir).LoadERC20()
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, uint8(6), got.Decimals)
}

func TestLoadCorruptRecordErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watchlist.json"), []byte("{oops"), 0o600))

	_, err := New(dir).LoadWatchlist()
	assert.Error(t, err)
}

func TestExhausted(t *testing.T) {
	assert.True(t, (&NFTRecord{TotalSupply: 3, NextToSend: 4}).Exhausted())
	assert.False(t, (&NFTRecord{TotalSupply: 3, NextToSend: 3}).Exhausted())
}

func TestNewDefaultsToWorkingDir(t *testing.T) {
	assert.Equal(t, ".", New("").Dir())
}
