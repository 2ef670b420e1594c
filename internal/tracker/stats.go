package tracker

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/ethereum/go-ethereum/common"
)

// Stats is the process-wide transaction accounting. Only the Tracker
// mutates it; SuccessCount+FailedCount never exceeds TransactionCount.
type Stats struct {
	TransactionCount uint64
	SuccessCount     uint64
	FailedCount      uint64
	PendingCount     uint64
	LastGasPriceGwei float64
}

// SuccessRate is success/(success+failed)*100, or 0 before any result.
func (s Stats) SuccessRate() float64 {
	denom := s.SuccessCount + s.FailedCount
	if denom == 0 {
		denom = 1
	}
	return float64(s.SuccessCount) / float64(denom) * 100
}

// Snapshot derives the console view.
func (s Stats) Snapshot() console.Snapshot {
	return console.Snapshot{
		TransactionCount: s.TransactionCount,
		SuccessRate:      s.SuccessRate(),
		FailedTx:         s.FailedCount,
		PendingTx:        s.PendingCount,
		CurrentGasPrice:  fmt.Sprintf("%.2f", s.LastGasPriceGwei),
	}
}

// Kind is the state an Outcome reports.
type Kind int

const (
	Pending Kind = iota
	Confirmed
	Failed
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is one immutable step of a tracked submission.
type Outcome struct {
	Kind              Kind
	Hash              common.Hash // zero when submission failed before a hash existed
	EffectiveGasPrice *big.Int    // Confirmed only, may be nil
	GasUsed           uint64
	Reason            error // Failed only
}

// apply folds o into s.
func (s *Stats) apply(o Outcome, gwei func(*big.Int) float64) {
	switch o.Kind {
	case Pending:
		s.PendingCount++
	case Confirmed:
		s.TransactionCount++
		s.SuccessCount++
		s.decPending()
		if o.EffectiveGasPrice != nil {
			s.LastGasPriceGwei = gwei(o.EffectiveGasPrice)
		}
	case Failed:
		s.TransactionCount++
		s.FailedCount++
		s.decPending()
	}
}

func (s *Stats) decPending() {
	if s.PendingCount > 0 {
		s.PendingCount--
	}
}
