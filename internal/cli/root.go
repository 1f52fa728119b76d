package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	wikiboot "github.com/goliatone/go-wikiboot"
	"github.com/goliatone/go-wikiboot/pkg/activity"
	"github.com/goliatone/go-wikiboot/pkg/storage"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand that talks to the CDN.
type globalFlags struct {
	debug   bool
	baseURL string
	sqlite  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "wikiboot",
		Short:        "Load the wikitext engine, negotiate its localization and compare versions",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log every bootstrap step to stderr")
	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "CDN host (defaults to WIKIBOOT_BASE_URL or the built-in mirror)")
	cmd.PersistentFlags().StringVar(&flags.sqlite, "sqlite", "", "persist localization bundles in this SQLite file")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "overall deadline for network commands")

	cmd.AddCommand(
		compareCmd(),
		languagesCmd(),
		negotiateCmd(flags),
		bootstrapCmd(flags),
	)
	return cmd
}

// session bundles what a network command needs.
type session struct {
	options []wikiboot.Option
	config  wikiboot.Config
	logger  *slog.Logger
	close   func() error
}

func openSession(ctx context.Context, flags *globalFlags, stderr io.Writer) (*session, error) {
	cfg, err := wikiboot.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}

	level := slog.LevelWarn
	if flags.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s := &session{
		config: cfg,
		logger: logger,
		close:  func() error { return nil },
	}
	s.options = []wikiboot.Option{
		wikiboot.WithConfig(cfg),
		wikiboot.WithLogger(wikiboot.SlogLogger(logger)),
		wikiboot.WithActivityHooks(activity.Hooks{logHook(logger)}),
	}
	if flags.sqlite != "" {
		store, err := storage.OpenSQLite(ctx, flags.sqlite)
		if err != nil {
			return nil, err
		}
		s.options = append(s.options, wikiboot.WithStore(store))
		s.close = store.Close
	}
	return s, nil
}

// logHook mirrors activity events into the command log.
func logHook(logger *slog.Logger) activity.ActivityHook {
	return activity.HookFunc(func(ctx context.Context, event activity.Event) error {
		level := slog.LevelDebug
		if event.Failed() {
			level = slog.LevelWarn
		}
		attrs := []slog.Attr{
			slog.String("object", event.ObjectType+":"+event.ObjectID),
		}
		if event.Failed() {
			attrs = append(attrs, slog.String("error", event.Error))
		}
		for key, value := range event.Metadata {
			attrs = append(attrs, slog.String(key, fmt.Sprint(value)))
		}
		logger.LogAttrs(ctx, level, event.Verb, attrs...)
		return nil
	})
}

func withTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
