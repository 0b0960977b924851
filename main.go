// proptrans translates Java .properties resource bundles with machine
// translation while keeping every byte of structure intact.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/i18n"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	infoLabel    = color.New(color.FgBlue).SprintFunc()
	successLabel = color.New(color.FgGreen).SprintFunc()
	warnLabel    = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorLabel   = color.New(color.FgRed).SprintFunc()
	heading      = color.New(color.FgBlue, color.Bold).SprintFunc()
	dim          = color.New(color.Faint).SprintFunc()
)

// Log helpers write to stderr. format is looked up in the UI catalog first.

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", infoLabel("[INFO]"), fmt.Sprintf(i18n.T(format), args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", successLabel("[OK]"), fmt.Sprintf(i18n.T(format), args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnLabel("[WARN]"), fmt.Sprintf(i18n.T(format), args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorLabel("[ERROR]"), fmt.Sprintf(i18n.T(format), args...))
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "proptrans",
		Short: "Machine translation for Java .properties files",
		Long: `proptrans translates Java .properties resource bundles.

Comments, blank lines, separators, indentation, continuation lines and
escapes are preserved exactly; only values are translated. Placeholders
such as {0}, ${name} and %s are protected from the translator.

Commands:
  serve       Run the HTTP translation service
  upload      Send a file to a translation service, one request per language
  local       Translate in-process against a provider, without a server
  inspect     Show what would be translated in a file
  init        Create a .proptrans.yaml project file
  languages   List supported language codes
  auth        Manage provider API keys

Providers:
  cloudflare     Cloudflare Workers AI (m2m100), API token + account ID
  google         Google AI (Gemini), API key
  groq           Groq, API key
  openai         OpenAI, API key
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newServeCmd(),
		newUploadCmd(),
		newLocalCmd(),
		newInspectCmd(),
		newInitCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "proptrans version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
			fmt.Fprintf(out, "  ui:     %s\n", i18n.Language())
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
