package config

import "time"

// RandomPlaceholder asks the deployment pipeline to generate a name or symbol.
const RandomPlaceholder = "RANDOM"

// Config holds all w3flow configuration.
type Config struct {
	Network      NetworkConfig      `yaml:"network"`
	Watchlist    WatchlistConfig    `yaml:"watchlist"`
	Withdraw     WithdrawConfig     `yaml:"withdraw"`
	RandomNative RandomNativeConfig `yaml:"random_native"`
	ERC20        ERC20Config        `yaml:"erc20"`
	NFT          NFTConfig          `yaml:"nft"`
	Gas          GasConfig          `yaml:"gas"`
	State        StateConfig        `yaml:"state"`
	Compiler     CompilerConfig     `yaml:"compiler"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`

	// internal: file the config was read from, empty when defaults only
	path string
}

// NetworkConfig describes the single endpoint every workflow talks to.
type NetworkConfig struct {
	RPCURL       string `yaml:"rpc_url"       default:"https://testnet.rpc.intuition.systems/http" validate:"required,url"`
	NativeSymbol string `yaml:"native_symbol" default:"tTRUST"                                      validate:"required"`
	ExplorerTx   string `yaml:"explorer_tx"   default:"https://testnet.explorer.intuition.systems/tx/"`
	Label        string `yaml:"label"         default:"Intuition Testnet (13579)"`
	ArbSys       string `yaml:"arbsys"        default:"0x0000000000000000000000000000000000000064" validate:"eth_addr"`
	ChainID      int64  `yaml:"chain_id"` // 0 = ask the node
}

// WatchlistConfig holds statically configured token addresses.
type WatchlistConfig struct {
	ERC20  []string `yaml:"erc20"  validate:"dive,eth_addr"`
	ERC721 []string `yaml:"erc721" validate:"dive,eth_addr"`
}

// WithdrawConfig configures the L2 -> L1 bridge withdrawal.
type WithdrawConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Destination string `yaml:"destination" default:"0x000000000000000000000000000000000000dEaD" validate:"eth_addr"`
	AmountEth   string `yaml:"amount_eth"  default:"0.0001"                                     validate:"numeric"`
}

// RandomNativeConfig configures native transfers to fresh addresses.
type RandomNativeConfig struct {
	Enabled bool          `yaml:"enabled"`
	TxCount int           `yaml:"tx_count" default:"3"       validate:"gte=0"`
	MinEth  string        `yaml:"min_eth"  default:"0.00001" validate:"numeric"`
	MaxEth  string        `yaml:"max_eth"  default:"0.00005" validate:"numeric"`
	Delay   time.Duration `yaml:"delay"    default:"2s"`
}

// AutoSendConfig configures a repeated token send.
type AutoSendConfig struct {
	Enabled     bool          `yaml:"enabled"       default:"true"`
	TxCount     int           `yaml:"tx_count"      default:"5" validate:"gte=0"`
	AmountPerTx string        `yaml:"amount_per_tx" default:"250"`
	Delay       time.Duration `yaml:"delay"         default:"3s"`
}

// ERC20Config configures the fungible token deployment.
type ERC20Config struct {
	Enabled  bool           `yaml:"enabled"   default:"true"`
	Name     string         `yaml:"name"      default:"RANDOM"  validate:"required"`
	Symbol   string         `yaml:"symbol"    default:"RANDOM"  validate:"required"`
	Decimals uint8          `yaml:"decimals"  default:"18"      validate:"lte=36"`
	Supply   string         `yaml:"supply"    default:"1000000" validate:"numeric"`
	AutoSend AutoSendConfig `yaml:"auto_send"`
}

// NFTConfig configures the ERC-721 collection deployment.
type NFTConfig struct {
	Enabled   bool           `yaml:"enabled"    default:"true"`
	Name      string         `yaml:"name"       default:"RANDOM" validate:"required"`
	Symbol    string         `yaml:"symbol"     default:"RND"    validate:"required"`
	Supply    int64          `yaml:"supply"     default:"333"    validate:"gt=0"`
	MintChunk int64          `yaml:"mint_chunk" default:"100"    validate:"gt=0"`
	AutoSend  AutoSendConfig `yaml:"auto_send"`
}

// GasConfig holds estimation fallbacks and confirmation settings.
type GasConfig struct {
	Transfer       uint64        `yaml:"transfer"        default:"21000"`
	Withdraw       uint64        `yaml:"withdraw"        default:"300000"`
	ERC20Transfer  uint64        `yaml:"erc20_transfer"  default:"60000"`
	ContractCall   uint64        `yaml:"contract_call"   default:"200000"`
	ERC20Deploy    uint64        `yaml:"erc20_deploy"    default:"5000000"`
	NFTDeploy      uint64        `yaml:"nft_deploy"      default:"6000000"`
	NFTMint        uint64        `yaml:"nft_mint"        default:"3000000"`
	NFTTransfer    uint64        `yaml:"nft_transfer"    default:"300000"`
	MarginPercent  uint64        `yaml:"margin_percent"  default:"20"  validate:"lte=500"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" default:"3m"`
	PollInterval   time.Duration `yaml:"poll_interval"   default:"2s"`
}

// StateConfig locates the durable JSON records.
type StateConfig struct {
	Dir string `yaml:"dir" default:"."`
}

// CompilerConfig configures the solc invocation.
type CompilerConfig struct {
	SolcPath      string `yaml:"solc_path"      default:"solc"`
	OptimizerRuns int    `yaml:"optimizer_runs" default:"200" validate:"gte=0"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"       default:"info"    validate:"oneof=debug info warn error"`
	Format     string `yaml:"format"      default:"console" validate:"oneof=console json"`
	OutputPath string `yaml:"output_path" default:"w3flow.log"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen" default:":9464"`
}
