package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wikiboot "github.com/goliatone/go-wikiboot"
)

func bootstrapCmd(flags *globalFlags) *cobra.Command {
	var (
		langs      []string
		configPath string
		enginePath string
	)

	c := &cobra.Command{
		Use:   "bootstrap",
		Short: "Load the engine and its language service, then push config and localization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			s, err := openSession(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			opts := []wikiboot.ReadyOption{
				wikiboot.WithPreferredLanguages(langs...),
				wikiboot.WithEnginePath(enginePath),
			}
			if configPath != "" {
				opts = append(opts, wikiboot.WithConfigProvider(fileConfigProvider(configPath)))
			}

			client := wikiboot.New(s.options...)
			if err := client.Bootstrapper.EnsureReady(ctx, opts...); err != nil {
				return err
			}

			version, err := client.Engine.Version()
			if err != nil {
				return err
			}
			cdn, err := client.Engine.CDN()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "engine:           %s\n", client.Engine.Symbol())
			fmt.Fprintf(out, "version:          %s\n", version)
			fmt.Fprintf(out, "cdn:              %s\n", cdn)
			fmt.Fprintf(out, "language service: %t\n", client.Engine.LanguageServiceReady())
			return nil
		},
	}

	c.Flags().StringArrayVarP(&langs, "lang", "l", nil, "preferred language, strongest first (repeatable)")
	c.Flags().StringVar(&configPath, "config", "", "JSON file pushed into the engine with setConfig")
	c.Flags().StringVar(&enginePath, "engine", "", "engine script or package root (defaults to WIKIBOOT_ENGINE_PATH)")
	return c
}

func fileConfigProvider(path string) wikiboot.ConfigProvider {
	return func(context.Context) (map[string]any, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read engine config: %w", err)
		}
		var config map[string]any
		if err := json.Unmarshal(raw, &config); err != nil {
			return nil, fmt.Errorf("parse engine config %s: %w", path, err)
		}
		return config, nil
	}
}
