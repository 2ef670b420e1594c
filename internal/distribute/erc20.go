package distribute

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/chain"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
)

// SendERC20 sends amountPerTx whole tokens to count fresh addresses.
// Progress is not persisted; an aborted batch starts over on the next run.
func (d *Distributor) SendERC20(ctx context.Context, address string, count int, amountPerTx string, delay time.Duration) (int, error) {
	addr, err := parseAddress(address, func() (string, error) {
		rec, err := d.store.LoadERC20()
		if err != nil || rec == nil {
			return "", err
		}
		return rec.Address, nil
	})
	if err != nil {
		return 0, err
	}

	tok := contract.NewERC20(d.client, addr)
	symbol, err := tok.Symbol(ctx)
	if err != nil || symbol == "" {
		symbol = "TKN"
	}
	decimals, err := tok.Decimals(ctx)
	if err != nil {
		decimals = 18
	}
	amount, err := chain.ParseUnits(amountPerTx, decimals)
	if err != nil {
		return 0, fmt.Errorf("invalid amount per tx: %w", err)
	}

	sent := 0
	for i := 0; i < count; i++ {
		to, err := d.recipient()
		if err != nil {
			return sent, err
		}
		req, err := contract.Transfer(addr, to, amount)
		if err != nil {
			return sent, err
		}
		label := fmt.Sprintf("ERC20 [%d/%d] %s %s → %s", i+1, count, amountPerTx, symbol, to.Hex())
		if _, err := d.submitter.Submit(ctx, req, d.gas.ERC20Transfer, label); err != nil {
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
