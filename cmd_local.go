package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/client"
	"github.com/minios-linux/proptrans/i18n"
	"github.com/minios-linux/proptrans/langmeta"
	"github.com/minios-linux/proptrans/lockfile"
	"github.com/minios-linux/proptrans/propfile"
	"github.com/minios-linux/proptrans/translate"
)

func newLocalCmd() *cobra.Command {
	var (
		pf        providerFlags
		file      string
		langs     []string
		outputDir string
		batchSize int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Translate in-process against a provider",
		Long: `Translate a .properties file directly against a provider, without a
proptrans server. The pipeline is the same as the server's: one probe
request per language, then batches of concurrent requests.

Examples:
  proptrans local --provider cloudflare -l fr,de
  proptrans local --provider ollama --model llama3.2 -f app.properties -l ja
  proptrans local --provider google --model gemini-2.5-flash --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			t, err := resolveTarget(file, langs, outputDir)
			if err != nil {
				return err
			}
			if pf.provider == "" {
				pf.provider = t.project.Provider
			}
			if pf.model == "" {
				pf.model = t.project.Model
			}
			if pf.prompt == "" {
				pf.prompt = t.project.Prompt
			}
			tr, err := pf.newClient()
			if err != nil {
				return err
			}
			return runLocal(ctx, tr, t, batchSize, force)
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "File to translate (default: source from .proptrans.yaml, or messages.properties)")
	cmd.Flags().StringSliceVarP(&langs, "languages", "l", nil, "Comma-separated target languages (default: fr,es,de)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for translated files")
	cmd.Flags().IntVar(&batchSize, "batch-size", translate.DefaultBatchSize, "Entries translated concurrently")
	cmd.Flags().BoolVar(&force, "force", false, "Translate even if the source is unchanged")

	return cmd
}

// runLocal translates t.source into every language with tr.
func runLocal(ctx context.Context, tr translate.Translator, t *target, batchSize int, force bool) error {
	data, err := os.ReadFile(t.source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", t.source, err)
	}
	entries := client.SourceEntries(propfile.Parse(data))
	source := lockTarget(t.source)

	lock, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}

	failed := false
	for _, lang := range t.languages {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := t.output(lang)
		lockKey := lockTarget(out)
		if !force && fileExists(out) && lock.UpToDate(lockKey, source, entries) {
			logInfo("%s is up to date, skipping (use --force to translate again)", out)
			continue
		}

		meta := langmeta.Resolve(lang)
		logInfo("Translating to %s (%s)...", meta.Name, lang)

		if err := translate.Probe(ctx, tr, lang); err != nil {
			logError("Translation service error: %v", err)
			failed = true
			continue
		}

		// TranslateFile rewrites lines in place, so each language gets a fresh parse.
		res := translate.TranslateFile(ctx, tr, propfile.Parse(data), translate.Options{
			Language:  lang,
			BatchSize: batchSize,
			OnProgress: func(done, total int) {
				logInfo("  %d/%d entries", done, total)
			},
			OnError: logWarning,
		})

		if err := writeTranslated(out, res.Text); err != nil {
			logError("%v", err)
			failed = true
			continue
		}

		if res.Failed > 0 {
			lock.RemoveTarget(lockKey)
			logWarning("Translated file saved as %s", out)
			logWarning("%s", i18n.Nf("%d entry left untranslated", "%d entries left untranslated", res.Failed))
		} else {
			lock.Record(lockKey, source, entries)
			logSuccess("Translated file saved as %s (%d translated, %d skipped)", out, res.Translated, res.Skipped)
		}
	}

	if err := lock.Save(); err != nil {
		logWarning("Could not save %s: %v", lockfile.LockFileName, err)
	}
	if failed {
		return errSomeFailed
	}
	return nil
}

func lockTarget(path string) string {
	if rel, err := filepath.Rel(rootDir, path); err == nil {
		path = rel
	}
	return lockfile.TargetKey(path)
}

func writeTranslated(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
