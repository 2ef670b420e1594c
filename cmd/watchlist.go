package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3flow/internal/store"
	"github.com/Mohsinsiddi/w3flow/internal/ui"
	"github.com/Mohsinsiddi/w3flow/internal/watchlist"
	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the token panel watchlist",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched token addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists := watchlist.New(cfg.Watchlist, store.New(cfg.State.Dir), logger).Load()
		out := cmd.OutOrStdout()
		if len(lists.Entries()) == 0 {
			fmt.Fprintln(out, ui.Meta("Watchlist is empty."))
			return nil
		}
		fmt.Fprint(out, watchlistTable(lists).Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d erc20, %d erc721", len(lists.ERC20), len(lists.ERC721))))
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <erc20|erc721> <address>",
	Short: "Add a token address to the watchlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := watchlist.ParseKind(args[0])
		if err != nil {
			return err
		}
		addr, err := watchlist.ValidateAddress(args[1])
		if err != nil {
			return err
		}
		reg := watchlist.New(cfg.Watchlist, store.New(cfg.State.Dir), logger)
		if _, err := reg.Add(kind, addr); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Watching %s %s", kind, ui.Addr(addr))))
		return nil
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd)
}
