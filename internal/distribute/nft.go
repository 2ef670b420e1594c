package distribute

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3flow/internal/console"
	"github.com/Mohsinsiddi/w3flow/internal/contract"
	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// NFTResult summarises one distribution run.
type NFTResult struct {
	Address     common.Address
	Sent        int
	NextToSend  int64
	TotalSupply int64
}

// Exhausted reports whether every id has been considered.
func (r NFTResult) Exhausted() bool { return r.NextToSend > r.TotalSupply }

// SendNFT sends up to count held ids of the collection to fresh addresses,
// resuming at the persisted cursor. Ids that are unminted or not held by
// the sender are skipped without counting. The cursor is persisted on
// every exit path, including errors, and never moves backwards.
func (d *Distributor) SendNFT(ctx context.Context, address string, count int, delay time.Duration) (NFTResult, error) {
	saved, err := d.store.LoadNFT()
	if err != nil {
		return NFTResult{}, err
	}
	addr, err := parseAddress(address, func() (string, error) {
		if saved == nil {
			return "", nil
		}
		return saved.Address, nil
	})
	if err != nil {
		return NFTResult{}, err
	}
	if saved != nil && !strings.EqualFold(saved.Address, addr.Hex()) {
		saved = nil
	}

	tok := contract.NewERC721(d.client, addr)
	res := NFTResult{Address: addr, NextToSend: 1}
	if saved != nil && saved.TotalSupply > 0 {
		res.TotalSupply = saved.TotalSupply
		res.NextToSend = saved.NextToSend
	} else {
		total, err := tok.TotalSupply(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to read total supply: %w", err)
		}
		res.TotalSupply = total.Int64()
	}

	d.sink.Log(console.LevelInfo, fmt.Sprintf("NFT auto-send: %s from #%d of %d", addr.Hex(), res.NextToSend, res.TotalSupply))
	runErr := d.distribute(ctx, tok, &res, count, delay)

	if err := d.saveCursor(saved, res); err != nil {
		if runErr != nil {
			return res, runErr
		}
		return res, err
	}
	d.metrics.DistributionCursor.WithLabelValues(addr.Hex()).Set(float64(res.NextToSend))

	if runErr != nil {
		return res, runErr
	}
	if res.Exhausted() && res.Sent == 0 {
		d.sink.Log(console.LevelInfo, "NFT auto-send: collection fully distributed")
	} else {
		d.sink.Log(console.LevelInfo, fmt.Sprintf("NFT auto-send: sent %d, next #%d", res.Sent, res.NextToSend))
	}
	return res, nil
}

func (d *Distributor) distribute(ctx context.Context, tok *contract.Token, res *NFTResult, count int, delay time.Duration) error {
	from := d.client.Address()
	for res.Sent < count && res.NextToSend <= res.TotalSupply {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := big.NewInt(res.NextToSend)
		if err := d.checkHeld(ctx, tok, id, from); err != nil {
			// a cancelled lookup says nothing about ownership; keep the cursor
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			d.logger.Debug("skipping token id", zap.Int64("id", res.NextToSend), zap.Error(err))
			res.NextToSend++
			continue
		}

		to, err := d.recipient()
		if err != nil {
			return err
		}
		req, err := contract.TransferFrom(tok.Address(), from, to, id, d.gas.NFTTransfer)
		if err != nil {
			return err
		}
		if _, err := d.submitter.Submit(ctx, req, 0, fmt.Sprintf("NFT #%d → %s", res.NextToSend, to.Hex())); err != nil {
			return err
		}
		res.NextToSend++
		res.Sent++

		if res.Sent < count && res.NextToSend <= res.TotalSupply {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Distributor) checkHeld(ctx context.Context, tok *contract.Token, id *big.Int, from common.Address) error {
	owner, err := tok.OwnerOf(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOwnershipMismatch, err)
	}
	if owner != from {
		return fmt.Errorf("%w: #%s held by %s", ErrOwnershipMismatch, id, owner.Hex())
	}
	return nil
}

// saveCursor merges the cursor over the prior record of the same
// collection so its name and symbol survive.
func (d *Distributor) saveCursor(prior *store.NFTRecord, res NFTResult) error {
	rec := store.NFTRecord{}
	if prior != nil {
		rec = *prior
	}
	rec.Address = res.Address.Hex()
	rec.TotalSupply = res.TotalSupply
	if res.NextToSend > rec.NextToSend {
		rec.NextToSend = res.NextToSend
	}
	if err := d.store.SaveNFT(&rec); err != nil {
		return fmt.Errorf("failed to persist nft cursor: %w", err)
	}
	return nil
}
