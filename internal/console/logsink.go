package console

import (
	"go.uber.org/zap"
)

// LogSink writes every console update to a zap logger. It backs headless
// runs and mirrors the interactive console into the log file.
type LogSink struct {
	logger *zap.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a LogSink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("console")}
}

func (s *LogSink) UpdateStats(snap Snapshot) {
	s.logger.Debug("stats",
		zap.Uint64("transactions", snap.TransactionCount),
		zap.String("success_rate", snap.SuccessRateText()),
		zap.Uint64("failed", snap.FailedTx),
		zap.Uint64("pending", snap.PendingTx),
		zap.String("gas_gwei", snap.CurrentGasPrice))
}

func (s *LogSink) UpdateWallet(w WalletView) {
	s.logger.Info("wallet",
		zap.String("address", w.Address),
		zap.String("balance", w.NativeBalance),
		zap.String("network", w.Network),
		zap.String("gas_gwei", w.GasPrice),
		zap.String("nonce", w.Nonce))
}

func (s *LogSink) SetTokens(items []TokenItem) {
	s.logger.Info("tokens", zap.Strings("items", FormatTokens(items)))
}

func (s *LogSink) Log(level Level, msg string) {
	switch level {
	case LevelError:
		s.logger.Error(msg)
	case LevelWarning:
		s.logger.Warn(msg)
	default:
		s.logger.Info(msg, zap.String("level", string(level)))
	}
}

func (s *LogSink) SetMenu(items []string) {
	s.logger.Debug("menu", zap.Strings("items", items))
}

func (s *LogSink) SetActive(active bool) {
	s.logger.Debug("active", zap.Bool("active", active))
}
