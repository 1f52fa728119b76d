package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	wikiboot "github.com/goliatone/go-wikiboot"
)

func negotiateCmd(flags *globalFlags) *cobra.Command {
	var (
		version        string
		langs          []string
		acceptLanguage string
		i18nURL        string
	)

	c := &cobra.Command{
		Use:   "negotiate",
		Short: "Fetch the first acceptable localization bundle and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			s, err := openSession(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			preferred := append([]string(nil), langs...)
			if acceptLanguage != "" {
				preferred = append(preferred, wikiboot.PreferredLanguages(acceptLanguage)...)
			}
			if len(preferred) == 0 {
				return fmt.Errorf("at least one --lang or --accept-language is required")
			}
			base := i18nURL
			if base == "" {
				base = defaultI18NURL(s.config)
			}

			bundle, err := wikiboot.NewNegotiator(s.options...).Negotiate(ctx, wikiboot.NegotiateRequest{
				BaseURL:        base,
				CurrentVersion: version,
				Preferred:      preferred,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(bundle)
		},
	}

	c.Flags().StringVar(&version, "version", "", "engine version to stamp on the bundle (required)")
	c.Flags().StringArrayVarP(&langs, "lang", "l", nil, "preferred language, strongest first (repeatable)")
	c.Flags().StringVar(&acceptLanguage, "accept-language", "", "Accept-Language header appended to --lang")
	c.Flags().StringVar(&i18nURL, "i18n-url", "", "directory serving {lang}.json (defaults next to the engine package)")

	_ = c.MarkFlagRequired("version")
	return c
}

// defaultI18NURL derives the bundle directory from the engine package root.
func defaultI18NURL(cfg wikiboot.Config) string {
	root := cfg.EnginePath
	if i := strings.Index(root, "/extensions/"); i >= 0 {
		root = root[:i]
	}
	return wikiboot.ResolveURL(cfg.BaseURL, root+"/i18n")
}
