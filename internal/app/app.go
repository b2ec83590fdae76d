package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/godilite/intra-stats/internal/cli"
	"github.com/godilite/intra-stats/internal/config"
	"github.com/godilite/intra-stats/internal/repository"
	"github.com/godilite/intra-stats/internal/service"
	"github.com/godilite/intra-stats/pkg/intra"
	"github.com/godilite/intra-stats/pkg/spinner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *intra.Metrics
	root    *cobra.Command
}

type options struct {
	out    io.Writer
	prompt cli.Prompter
}

type Option func(*options)

// WithOutput redirects command output and progress indicators.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

func WithPrompter(p cli.Prompter) Option {
	return func(o *options) {
		if p != nil {
			o.prompt = p
		}
	}
}

// NewApp wires the API client, the statistics service and the command tree.
// ctx scopes the token source and must outlive the App.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		panic("nil Config provided to NewApp")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{out: os.Stdout, prompt: cli.PromptUI{}}
	for _, opt := range opts {
		opt(&o)
	}

	base := &http.Client{
		Timeout:   cfg.API.Timeout,
		Transport: intra.NewLoggingTransport(http.DefaultTransport, logger),
	}
	credentials := clientcredentials.Config{
		ClientID:     cfg.API.UID,
		ClientSecret: cfg.API.Secret,
		TokenURL:     cfg.API.TokenURL,
	}
	httpClient := credentials.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.API.Timeout

	metrics := intra.NewMetrics()
	client, err := intra.New(httpClient,
		intra.WithBaseURL(cfg.API.BaseURL),
		intra.WithLogger(logger),
		intra.WithRetry(cfg.API.RetryAttempts, cfg.API.RetryInitialWait),
		intra.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("api client init failed: %w", err)
	}
	logger.Debug("api client initialized", zap.String("base_url", cfg.API.BaseURL))

	repo := repository.NewIntraRepository(client)
	stats := service.NewStatsService(repo, logger)

	handlers := cli.NewHandlers(stats, cfg.Campuses, logger,
		cli.WithProgress(func(text string) cli.Progress {
			return spinner.New(o.out, text)
		}),
		cli.WithNotifierSetter(client),
	)
	root := cli.NewRootCommand(handlers, cli.NewMenu(handlers, o.prompt, o.out))
	root.SetOut(o.out)

	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		root:    root,
	}, nil
}

// Run executes the command line in args and blocks until it is done.
func (a *App) Run(ctx context.Context, args []string) error {
	a.logger.Debug("application starting", zap.Strings("args", args))

	a.root.SetArgs(args)
	err := a.root.ExecuteContext(ctx)

	if a.cfg.MetricsFile != "" {
		if werr := a.metrics.WriteTextfile(a.cfg.MetricsFile); werr != nil {
			a.logger.Error("metrics export failed", zap.String("path", a.cfg.MetricsFile), zap.Error(werr))
		}
	}

	_ = a.logger.Sync()
	return err
}
