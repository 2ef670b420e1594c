package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3flow/internal/ui"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the workflow selectors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, label := range menuLabels() {
			fmt.Fprintln(out, ui.Val(label))
		}
		fmt.Fprintln(out, ui.Meta("Run one with: w3flow run --select N"))
		return nil
	},
}
