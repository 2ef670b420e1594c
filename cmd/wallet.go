package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Mohsinsiddi/w3flow/internal/ui"
	"github.com/Mohsinsiddi/w3flow/internal/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the signing key",
}

var walletImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store a private key in the OS keychain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := wallet.OpenKeystore(cfg.State.Dir)
		if err != nil {
			return err
		}
		if ks.Has() && !ui.ConfirmDanger(cmd.InOrStdin(), cmd.OutOrStdout(), "A key is already stored. Replace it?") {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
			return nil
		}

		hexKey, err := readSecret(cmd, "Private key (hex): ")
		if err != nil {
			return err
		}
		key, err := wallet.ParseKey(hexKey)
		if err != nil {
			return err
		}
		if err := ks.Save(hexKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Signing key stored for "+ui.Addr(wallet.Address(key).Hex())))
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the signer address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, origin, err := resolveKey()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Addr(wallet.Address(key).Hex()), ui.Meta("("+string(origin)+")"))
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletImportCmd, walletShowCmd)
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", errors.New("no key entered")
	}
	return strings.TrimSpace(line), nil
}
