package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/settings"
	"github.com/minios-linux/proptrans/translate"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys for translation providers.

Keys are stored in ` + settings.FilePath() + ` (mode 0600).
--api-key and $` + settings.APIKeyEnv + ` take precedence over stored keys.

Examples:
  proptrans auth set-key --provider cloudflare --account-id ACCOUNT
  proptrans auth set-key --provider custom-openai --base-url http://llm.local/v1
  proptrans auth remove --provider groq
  proptrans auth remove                    Remove all credentials
  proptrans auth list`,
	}

	cmd.AddCommand(
		newAuthSetKeyCmd(),
		newAuthRemoveCmd(),
		newAuthListCmd(),
	)
	return cmd
}

func newAuthSetKeyCmd() *cobra.Command {
	var provider, accountID, baseURL string

	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store an API key (read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := translate.DefaultProviders()[provider]; !ok {
				return fmt.Errorf("unknown provider %q (%s)", provider, strings.Join(translate.ProviderIDs(), ", "))
			}
			return authSetKey(cmd.InOrStdin(), provider, accountID, baseURL)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider ID (required)")
	cmd.Flags().StringVar(&accountID, "account-id", "", "Cloudflare account ID")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Endpoint of a custom OpenAI-compatible provider")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func authSetKey(in io.Reader, providerID, accountID, baseURL string) error {
	existing := settings.Get(providerID)
	if existing != nil && existing.Key != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s\n", warnLabel(settings.MaskKey(existing.Key)))
		fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key: ")
	}

	scanner := bufio.NewScanner(in)
	key := ""
	if scanner.Scan() {
		key = strings.TrimSpace(scanner.Text())
	}
	fmt.Fprintln(os.Stderr)

	if key == "" && (existing == nil || existing.Key == "") && translate.NeedsAPIKey(providerID) {
		return fmt.Errorf("no API key provided")
	}

	var stored settings.Info
	err := settings.Update(providerID, func(info *settings.Info) {
		if key != "" {
			info.Key = key
		}
		if accountID != "" {
			info.AccountID = accountID
		}
		if baseURL != "" {
			info.BaseURL = baseURL
		}
		stored = *info
	})
	if err != nil {
		return err
	}
	if providerID == translate.ProviderCloudflare && stored.AccountID == "" {
		logWarning("No Cloudflare account ID stored; pass --account-id or set %s", settings.AccountIDEnv)
	}
	logSuccess("Credentials for %s saved", providerID)
	return nil
}

func newAuthRemoveCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"logout"},
		Short:   "Remove stored credentials",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("All stored credentials removed")
				return nil
			}
			if settings.Get(provider) == nil {
				logWarning("No credentials stored for %s", provider)
				return nil
			}
			if err := settings.Remove(provider); err != nil {
				return err
			}
			logSuccess("Credentials for %s removed", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider ID (default: all)")
	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			store := settings.Load()
			defaults := translate.DefaultProviders()

			fmt.Fprintf(out, "\n%s\n", heading("Stored Credentials"))
			fmt.Fprintln(out, strings.Repeat("─", 60))
			for _, id := range translate.ProviderIDs() {
				info := store[id]
				var status string
				switch {
				case info != nil && info.Key != "":
					status = successLabel("configured") + " (key: " + settings.MaskKey(info.Key) + ")"
				case info != nil:
					status = successLabel("configured") + " (no key)"
				case !translate.NeedsAPIKey(id):
					status = dim("no key needed")
				default:
					status = errorLabel("not configured")
				}
				fmt.Fprintf(out, "  %-14s %s\n", id, status)
				if info != nil && info.AccountID != "" {
					fmt.Fprintf(out, "  %14s account: %s\n", "", info.AccountID)
				}
				if info != nil && info.BaseURL != "" {
					fmt.Fprintf(out, "  %14s endpoint: %s\n", "", info.BaseURL)
				} else if !translate.NeedsAPIKey(id) && defaults[id].BaseURL != "" {
					fmt.Fprintf(out, "  %14s endpoint: %s\n", "", dim(defaults[id].BaseURL))
				}
			}

			for _, id := range store.Providers() {
				if _, ok := defaults[id]; !ok {
					fmt.Fprintf(out, "  %-14s %s\n", id, warnLabel("unknown provider"))
				}
			}

			fmt.Fprintf(out, "\n  %s\n", heading("Environment Variables"))
			for _, env := range []string{settings.APIKeyEnv, settings.AccountIDEnv} {
				if v := os.Getenv(env); v != "" {
					fmt.Fprintf(out, "  %s: %s (overrides stored values)\n", env, successLabel(settings.MaskKey(v)))
				} else {
					fmt.Fprintf(out, "  %s: %s\n", env, dim("not set"))
				}
			}
			fmt.Fprintln(out)
		},
	}
}
