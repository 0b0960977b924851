package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/minios-linux/proptrans/langmeta"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderCloudflare   = "cloudflare"
	ProviderGoogle       = "google"
	ProviderGroq         = "groq"
	ProviderOpenAI       = "openai"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// CloudflareModel is the Workers AI translation model.
const CloudflareModel = "@cf/meta/m2m100-1.2b"

// DefaultSourceLang is the language source files are assumed to be written in.
const DefaultSourceLang = "en"

// ---------------------------------------------------------------------------
// System prompt (LLM providers)
// ---------------------------------------------------------------------------

// DefaultSystemPrompt instructs chat models how to treat translation units.
// {{sourceLang}}, {{targetLang}} and {{delimiter}} are substituted per call.
const DefaultSystemPrompt = `You are a professional translator specializing in software localization. You are translating UI strings from a Java .properties resource bundle.

Translate the user's message from {{sourceLang}} into {{targetLang}}.

RULES:
1. Return ONLY the translated text. No quotes, notes, explanations or code fences.
2. Markers like __PH_0__, __PH_1__ stand for values inserted at runtime. Copy every marker exactly as written and keep it where it makes sense in the translated sentence.
3. The message may contain the separator character {{delimiter}}. It splits one message into consecutive lines. Your answer must contain exactly the same number of {{delimiter}} characters, in the same order. Translate the text between them.
4. Keep leading and trailing spaces of each part.
5. Do not translate product names, brand names or technical identifiers.
6. Keep the tone and length close to the original.`

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (cloudflare, google, groq, etc.).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// AccountID is the Cloudflare account that owns the Workers AI binding.
	AccountID string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderCloudflare: {
			ID:      ProviderCloudflare,
			Name:    "Cloudflare Workers AI",
			BaseURL: "https://api.cloudflare.com/client/v4",
			Model:   CloudflareModel,
			Timeout: 60 * time.Second,
		},
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: 60 * time.Second,
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI",
			BaseURL: "https://api.openai.com/v1",
			Timeout: 120 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Timeout: 120 * time.Second,
		},
	}
}

// ProviderIDs returns the known provider identifiers in display order.
func ProviderIDs() []string {
	return []string{
		ProviderCloudflare,
		ProviderGoogle,
		ProviderGroq,
		ProviderOpenAI,
		ProviderCustomOpenAI,
		ProviderOllama,
	}
}

// NeedsAPIKey reports whether the provider requires an API key.
func NeedsAPIKey(id string) bool {
	return id != ProviderOllama && id != ProviderCustomOpenAI
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// ClientOptions controls how a Client talks to its provider.
type ClientOptions struct {
	// SourceLang is the language of the input text (default "en").
	SourceLang string
	// SystemPrompt overrides DefaultSystemPrompt for chat models.
	SystemPrompt string
	// Timeout overrides the provider timeout if set.
	Timeout time.Duration
	// MaxRetries is the number of retries on transport errors, 429 and 5xx
	// responses. Zero means every call is attempted once.
	MaxRetries int
	// OnLog receives debug messages when Verbose is set.
	OnLog func(format string, args ...any)
	// Verbose enables per-request logging.
	Verbose bool
}

// Client is a Translator backed by a remote provider. It is safe for
// concurrent use.
type Client struct {
	prov   Provider
	opts   ClientOptions
	format apiFormat
	http   *resty.Client
}

// NewClient validates prov and returns a Client for it.
func NewClient(prov Provider, opts ClientOptions) (*Client, error) {
	if opts.SourceLang == "" {
		opts.SourceLang = DefaultSourceLang
	}
	if opts.Timeout > 0 {
		prov.Timeout = opts.Timeout
	}
	if prov.Timeout <= 0 {
		prov.Timeout = 120 * time.Second
	}

	if prov.BaseURL == "" {
		return nil, fmt.Errorf("provider %s: base URL is required", prov.ID)
	}
	if prov.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", prov.ID)
	}
	if NeedsAPIKey(prov.ID) && prov.APIKey == "" {
		return nil, fmt.Errorf("provider %s: API key is required", prov.ID)
	}
	if prov.ID == ProviderCloudflare && prov.AccountID == "" {
		return nil, fmt.Errorf("provider %s: account ID is required", prov.ID)
	}

	c := &Client{prov: prov, opts: opts, format: formatFor(prov.ID)}
	c.http = c.newHTTPClient()
	return c, nil
}

// Provider returns the provider configuration the client was built with.
func (c *Client) Provider() Provider {
	return c.prov
}

// Translate sends text to the provider and returns the translation.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var systemPrompt string
	if c.format != formatCloudflare {
		systemPrompt = c.resolvedPrompt(targetLang)
	}
	out, err := c.call(ctx, systemPrompt, text, targetLang)
	if err != nil {
		return "", err
	}
	if c.format != formatCloudflare {
		out = cleanModelOutput(out)
	}
	return out, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.opts.Verbose && c.opts.OnLog != nil {
		c.opts.OnLog(format, args...)
	}
}

// resolvedPrompt returns the system prompt with its variables replaced.
func (c *Client) resolvedPrompt(targetLang string) string {
	prompt := c.opts.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return strings.NewReplacer(
		"{{sourceLang}}", langmeta.Resolve(c.opts.SourceLang).Name,
		"{{targetLang}}", langmeta.Resolve(targetLang).Name,
		"{{delimiter}}", Delimiter,
	).Replace(prompt)
}

var markdownCodeBlock = regexp.MustCompile("(?s)^```[a-z]*\\n?(.*?)\\n?```$")

// cleanModelOutput strips wrapping a chat model may add around its answer.
// Spaces are kept: they can be significant at segment boundaries.
func cleanModelOutput(s string) string {
	s = strings.Trim(s, "\r\n")
	if m := markdownCodeBlock.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	return s
}

// ---------------------------------------------------------------------------
// HTTP client
// ---------------------------------------------------------------------------

// Retry waits grow from retryWait up to maxRetryWait. Tests shorten them.
var (
	retryWait    = time.Second
	maxRetryWait = 30 * time.Second
)

func (c *Client) newHTTPClient() *resty.Client {
	h := resty.New().
		SetTimeout(c.prov.Timeout).
		SetHeader("Content-Type", "application/json").
		SetLogger(clientLogger{c.logf}).
		SetRetryCount(max(c.opts.MaxRetries, 0)).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(maxRetryWait).
		SetRetryAfter(retryAfter).
		AddRetryCondition(retryable).
		AddRetryHook(func(resp *resty.Response, err error) {
			if err != nil {
				c.logf("%s: retrying after error: %v", c.prov.Name, err)
				return
			}
			c.logf("%s: retrying after status %d", c.prov.Name, resp.StatusCode())
		})

	if c.prov.Proxy != "" {
		h.SetProxy(c.prov.Proxy)
	}

	switch {
	case c.prov.APIKey == "":
	case c.format == formatGeminiNative:
		h.SetHeader("x-goog-api-key", c.prov.APIKey)
	default:
		h.SetAuthToken(c.prov.APIKey)
	}
	return h
}

// retryable selects the responses worth another attempt.
func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= 500
}

// retryAfter honours a Retry-After header given in seconds. Zero falls
// back to the client's exponential backoff.
func retryAfter(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	if resp.StatusCode() != http.StatusTooManyRequests {
		return 0, nil
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header().Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0, nil
	}
	return time.Duration(secs) * time.Second, nil
}

// clientLogger sends resty's own messages to the verbose log.
type clientLogger struct {
	logf func(format string, args ...any)
}

func (l clientLogger) Errorf(format string, v ...any) { l.logf(format, v...) }
func (l clientLogger) Warnf(format string, v ...any)  { l.logf(format, v...) }
func (l clientLogger) Debugf(format string, v ...any) { l.logf(format, v...) }

// ---------------------------------------------------------------------------
// API formats
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat   apiFormat = iota // OpenAI chat/completions
	formatGeminiNative                  // Google Gemini generateContent
	formatCloudflare                    // Workers AI m2m100 run
)

func formatFor(id string) apiFormat {
	switch id {
	case ProviderCloudflare:
		return formatCloudflare
	case ProviderGoogle:
		return formatGeminiNative
	default:
		return formatOpenAIChat
	}
}

// temperature keeps chat models close to a literal translation.
const temperature = 0.2

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *chatResponse) text() (string, error) {
	if len(r.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return r.Choices[0].Message.Content, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r *geminiResponse) text() (string, error) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("response has no candidates")
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

type cloudflareRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type cloudflareResponse struct {
	Success bool `json:"success"`
	Result  struct {
		TranslatedText *string `json:"translated_text"`
	} `json:"result"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (r *cloudflareResponse) text() (string, error) {
	if !r.Success {
		if len(r.Errors) > 0 {
			return "", fmt.Errorf("API error %d: %s", r.Errors[0].Code, r.Errors[0].Message)
		}
		return "", errors.New("API error: request unsuccessful")
	}
	if r.Result.TranslatedText == nil {
		return "", errors.New("response has no translated_text")
	}
	return *r.Result.TranslatedText, nil
}

// apiResponse is a decoded success body of one of the formats.
type apiResponse interface {
	text() (string, error)
}

// request returns the endpoint, body and response holder for one call.
func (c *Client) request(systemPrompt, text, targetLang string) (string, any, apiResponse) {
	baseURL := strings.TrimRight(c.prov.BaseURL, "/")

	switch c.format {
	case formatCloudflare:
		endpoint := fmt.Sprintf("%s/accounts/%s/ai/run/%s", baseURL, c.prov.AccountID, c.prov.Model)
		body := cloudflareRequest{Text: text, SourceLang: c.opts.SourceLang, TargetLang: targetLang}
		return endpoint, body, &cloudflareResponse{}

	case formatGeminiNative:
		endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, c.prov.Model)
		body := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}}}
		body.GenerationConfig.Temperature = temperature
		if systemPrompt != "" {
			body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
		}
		return endpoint, body, &geminiResponse{}

	default:
		endpoint := baseURL
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			endpoint += "/chat/completions"
		}
		body := chatRequest{
			Model: c.prov.Model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: text},
			},
			Temperature: temperature,
		}
		return endpoint, body, &chatResponse{}
	}
}

// call posts one translation request, retrying as configured.
func (c *Client) call(ctx context.Context, systemPrompt, text, targetLang string) (string, error) {
	endpoint, body, result := c.request(systemPrompt, text, targetLang)
	c.logf("%s: POST %s", c.prov.Name, endpoint)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.prov.Name, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return "", fmt.Errorf("rate limited after %d retries: %s", c.opts.MaxRetries, truncate(resp.String(), 500))
	case resp.IsError() || code != http.StatusOK:
		return "", fmt.Errorf("API returned status %d: %s", code, truncate(resp.String(), 500))
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	out, err := result.text()
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.prov.Name, err)
	}
	return out, nil
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
