package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/proptrans/settings"
	"github.com/minios-linux/proptrans/translate"
)

// providerFlags are shared by every command that talks to a provider.
type providerFlags struct {
	provider   string
	model      string
	apiKey     string
	accountID  string
	baseURL    string
	proxy      string
	prompt     string
	sourceLang string
	timeout    time.Duration
	maxRetries int
	verbose    bool
}

func (p *providerFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("provider", pflag.ContinueOnError)
	fs.StringVar(&p.provider, "provider", "", "Provider: "+strings.Join(translate.ProviderIDs(), ", "))
	fs.StringVar(&p.model, "model", "", "Model name (default: provider default)")
	fs.StringVar(&p.apiKey, "api-key", "", "API key (or "+settings.APIKeyEnv+" env var)")
	fs.StringVar(&p.accountID, "account-id", "", "Cloudflare account ID (or "+settings.AccountIDEnv+" env var)")
	fs.StringVar(&p.baseURL, "base-url", "", "Custom API base URL")
	fs.StringVar(&p.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	fs.StringVar(&p.prompt, "prompt", "", "Custom system prompt ({{sourceLang}}, {{targetLang}}, {{delimiter}})")
	fs.StringVar(&p.sourceLang, "source-lang", translate.DefaultSourceLang, "Language of the source file")
	fs.DurationVar(&p.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	fs.IntVar(&p.maxRetries, "max-retries", 0, "Retries on 429 and 5xx responses")
	fs.BoolVarP(&p.verbose, "verbose", "v", false, "Log every request")
	return fs
}

// register adds the provider flags and their completions to cmd.
func (p *providerFlags) register(cmd *cobra.Command) {
	cmd.Flags().AddFlagSet(p.flagSet())

	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		defaults := translate.DefaultProviders()
		var out []string
		for _, id := range translate.ProviderIDs() {
			out = append(out, id+"\t"+defaults[id].Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prov, _ := cmd.Flags().GetString("provider")
		return modelExamples[prov], cobra.ShellCompDirectiveNoFileComp
	})
}

var modelExamples = map[string][]string{
	translate.ProviderCloudflare:   {translate.CloudflareModel},
	translate.ProviderGoogle:       {"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-pro"},
	translate.ProviderGroq:         {"llama-3.3-70b-versatile", "mixtral-8x7b-32768"},
	translate.ProviderOpenAI:       {"gpt-4o", "gpt-4o-mini"},
	translate.ProviderOllama:       {"llama3.2", "qwen2.5", "mistral"},
	translate.ProviderCustomOpenAI: {"gpt-4o", "gpt-4o-mini"},
}

// resolveProvider merges the provider defaults with flags and stored
// credentials.
func (p *providerFlags) resolveProvider() (translate.Provider, error) {
	id := strings.ToLower(p.provider)
	if id == "" {
		return translate.Provider{}, fmt.Errorf("--provider is required (%s)", strings.Join(translate.ProviderIDs(), ", "))
	}
	prov, ok := translate.DefaultProviders()[id]
	if !ok {
		return translate.Provider{}, fmt.Errorf("unknown provider %q (%s)", p.provider, strings.Join(translate.ProviderIDs(), ", "))
	}

	switch {
	case p.baseURL != "":
		prov.BaseURL = p.baseURL
	case prov.ID == translate.ProviderCustomOpenAI:
		prov.BaseURL = settings.BaseURL(prov.ID)
	}
	if p.model != "" {
		prov.Model = p.model
	}
	if p.proxy != "" {
		prov.Proxy = p.proxy
	}
	if p.timeout > 0 {
		prov.Timeout = p.timeout
	}
	prov.APIKey = settings.APIKey(prov.ID, p.apiKey)
	if prov.ID == translate.ProviderCloudflare {
		prov.AccountID = settings.AccountID(prov.ID, p.accountID)
	}

	if prov.Model == "" {
		examples := strings.Join(modelExamples[prov.ID], ", ")
		return prov, fmt.Errorf("--model is required for provider '%s'\n\nExample models for %s:\n  %s", prov.ID, prov.Name, examples)
	}
	if translate.NeedsAPIKey(prov.ID) && prov.APIKey == "" {
		return prov, fmt.Errorf("provider '%s' requires an API key\n\n"+
			"Option 1: Store your API key:\n"+
			"  proptrans auth set-key --provider %s\n\n"+
			"Option 2: Pass key directly:\n"+
			"  --api-key YOUR_KEY or export %s=YOUR_KEY", prov.ID, prov.ID, settings.APIKeyEnv)
	}
	return prov, nil
}

// newClient builds a translation client from the flags.
func (p *providerFlags) newClient() (*translate.Client, error) {
	prov, err := p.resolveProvider()
	if err != nil {
		return nil, err
	}
	return translate.NewClient(prov, translate.ClientOptions{
		SourceLang:   p.sourceLang,
		SystemPrompt: p.prompt,
		MaxRetries:   p.maxRetries,
		Verbose:      p.verbose,
		OnLog:        logInfo,
	})
}
