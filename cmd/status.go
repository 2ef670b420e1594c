package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/Mohsinsiddi/w3flow/internal/ui"
	"github.com/Mohsinsiddi/w3flow/internal/watchlist"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployed assets, the distribution cursor and the watchlist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		st := store.New(cfg.State.Dir)

		source := cfg.Path()
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintln(out, ui.KeyValueBlock("w3flow "+Version, [][2]string{
			{"Config", source},
			{"Network", cfg.Network.Label},
			{"RPC", cfg.Network.RPCURL},
			{"State dir", st.Dir()},
		}))

		erc20, err := st.LoadERC20()
		if err != nil {
			fmt.Fprintln(out, ui.Warn("erc20 record: "+err.Error()))
		}
		fmt.Fprintln(out, erc20Block(erc20))

		nft, err := st.LoadNFT()
		if err != nil {
			fmt.Fprintln(out, ui.Warn("nft record: "+err.Error()))
		}
		fmt.Fprintln(out, nftBlock(nft))

		lists := watchlist.New(cfg.Watchlist, st, logger).Load()
		fmt.Fprint(out, watchlistTable(lists).Render())
		return nil
	},
}

func erc20Block(rec *store.ERC20Record) string {
	if rec == nil {
		return ui.KeyValueBlock("Last ERC-20", [][2]string{{"Address", "none deployed"}})
	}
	return ui.KeyValueBlock("Last ERC-20", [][2]string{
		{"Address", rec.Address},
		{"Token", fmt.Sprintf("%s (%s)", rec.Name, rec.Symbol)},
		{"Decimals", fmt.Sprintf("%d", rec.Decimals)},
	})
}

func nftBlock(rec *store.NFTRecord) string {
	if rec == nil {
		return ui.KeyValueBlock("Last NFT", [][2]string{{"Address", "none deployed"}})
	}
	cursor := fmt.Sprintf("next #%d of %d", rec.NextToSend, rec.TotalSupply)
	if rec.Exhausted() {
		cursor = "fully distributed"
	}
	name := rec.Name
	if rec.Symbol != "" {
		name = fmt.Sprintf("%s (%s)", rec.Name, rec.Symbol)
	}
	return ui.KeyValueBlock("Last NFT", [][2]string{
		{"Address", rec.Address},
		{"Collection", name},
		{"Supply", fmt.Sprintf("%d", rec.TotalSupply)},
		{"Cursor", cursor},
	})
}

func watchlistTable(lists watchlist.Lists) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Kind", Width: 8},
		{Title: "Address", Width: 42},
	})
	for _, e := range lists.Entries() {
		t.AddRow(ui.Row{string(e.Kind), e.Address})
	}
	return t
}
