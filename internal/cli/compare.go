package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	wikiboot "github.com/goliatone/go-wikiboot"
)

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <version> <base>",
		Short: "Report whether version is at least base (major.minor only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, base := wikiboot.ParseVersion(args[0]), wikiboot.ParseVersion(args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%t\n", version.AtLeast(base))
			if !version.Comparable() || !base.Comparable() {
				fmt.Fprintf(cmd.ErrOrStderr(), "incomparable: %s vs %s\n", version, base)
			}
			return nil
		},
	}
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages <accept-language>",
		Short: "Print the language preference order of an Accept-Language header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, lang := range wikiboot.PreferredLanguages(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), lang)
			}
			return nil
		},
	}
}
