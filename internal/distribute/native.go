package distribute

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// amountDigits is the fractional precision of random native amounts.
const amountDigits = 8

// RandomNative sends count random amounts in [minEth, maxEth) to fresh
// addresses.
func (d *Distributor) RandomNative(ctx context.Context, count int, minEth, maxEth string, delay time.Duration) (int, error) {
	lo, err := decimal.NewFromString(minEth)
	if err != nil {
		return 0, fmt.Errorf("invalid min amount %q: %w", minEth, err)
	}
	hi, err := decimal.NewFromString(maxEth)
	if err != nil {
		return 0, fmt.Errorf("invalid max amount %q: %w", maxEth, err)
	}

	sent := 0
	for i := 0; i < count; i++ {
		amount := d.rand.Amount(lo, hi, amountDigits)
		value, err := chain.ParseEther(amount.String())
		if err != nil {
			return sent, err
		}
		to, err := d.recipient()
		if err != nil {
			return sent, err
		}

		d.sink.Log(console.LevelGas, fmt.Sprintf("Native [%d/%d] %s %s → %s", i+1, count, amount, d.network.NativeSymbol, to.Hex()))
		req := chain.Request{To: &to, Value: value}
		if _, err := d.submitter.Submit(ctx, req, d.gas.Transfer, fmt.Sprintf("Native [%d/%d]", i+1, count)); err != nil {
			return sent, err
		}
		sent++
		if i < count-1 {
			if err := sleep(ctx, delay); err != nil {
				return sent, err
			}
		}
	}
	return sent, nil
}

// Withdraw bridges amountEth to destination on L1 through ArbSys.
func (d *Distributor) Withdraw(ctx context.Context, destination, amountEth string) error {
	if !common.IsHexAddress(destination) {
		return fmt.Errorf("invalid withdraw destination %q", destination)
	}
	if !common.IsHexAddress(d.network.ArbSys) {
		return fmt.Errorf("invalid arbsys address %q", d.network.ArbSys)
	}
	value, err := chain.ParseEther(amountEth)
	if err != nil {
		return fmt.Errorf("invalid withdraw amount: %w", err)
	}
	dest := common.HexToAddress(destination)

	d.sink.Log(console.LevelBridge, fmt.Sprintf("Withdraw %s %s → %s", amountEth, d.network.NativeSymbol, dest.Hex()))
	req, err := contract.WithdrawEth(common.HexToAddress(d.network.ArbSys), dest, value)
	if err != nil {
		return err
	}
	_, err = d.submitter.Submit(ctx, req, d.gas.Withdraw, "Withdraw")
	return err
}
