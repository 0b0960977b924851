package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/server"
	"github.com/minios-linux/proptrans/settings"
	"github.com/minios-linux/proptrans/translate"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP translation service",
		Long: `Run the HTTP translation service.

POST a multipart form with a "file" part (.properties, up to 5 MB) and a
"language" field to /translate. The response is the translated file.

Configuration is read from a YAML file (--config, $` + config.ServerConfigEnv + `,
or ` + config.DefaultServerConfigPath + `) and PROPTRANS_* environment variables,
which take precedence.

Endpoints:
  POST /translate   Translate an uploaded file
  GET  /            Upload form
  GET  /health      Liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				os.Setenv(config.ServerConfigEnv, configPath)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Server configuration file")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	logger := server.NewLogger(cfg.Log, os.Stderr)

	prov, err := providerFromConfig(cfg.Provider)
	if err != nil {
		return err
	}
	tr, err := translate.NewClient(prov, translate.ClientOptions{
		SourceLang:   cfg.Translate.SourceLang,
		SystemPrompt: cfg.Provider.SystemPrompt,
		MaxRetries:   cfg.Provider.MaxRetries,
		Verbose:      strings.EqualFold(cfg.Log.Level, "debug"),
		OnLog: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), slog.String("provider", prov.ID))
		},
	})
	if err != nil {
		return err
	}

	logger.Info("starting proptrans",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("provider", prov.ID),
		slog.String("model", prov.Model),
	)

	return server.New(cfg, tr, logger, version).Run(ctx)
}

// providerFromConfig merges the provider defaults with server configuration
// and stored credentials.
func providerFromConfig(pc config.ProviderConfig) (translate.Provider, error) {
	id := strings.ToLower(pc.ID)
	prov, ok := translate.DefaultProviders()[id]
	if !ok {
		return translate.Provider{}, fmt.Errorf("unknown provider %q (%s)", pc.ID, strings.Join(translate.ProviderIDs(), ", "))
	}
	if pc.BaseURL != "" {
		prov.BaseURL = pc.BaseURL
	} else if id == translate.ProviderCustomOpenAI {
		prov.BaseURL = settings.BaseURL(id)
	}
	if pc.Model != "" {
		prov.Model = pc.Model
	}
	if pc.Proxy != "" {
		prov.Proxy = pc.Proxy
	}
	if pc.Timeout > 0 {
		prov.Timeout = pc.Timeout
	}
	prov.APIKey = settings.APIKey(id, pc.APIKey)
	if id == translate.ProviderCloudflare {
		prov.AccountID = settings.AccountID(id, pc.AccountID)
	}
	return prov, nil
}
