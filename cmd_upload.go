package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/client"
	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/i18n"
	"github.com/minios-linux/proptrans/lockfile"
)

// target describes the files one run reads and writes.
type target struct {
	source    string
	languages []string
	output    func(lang string) string
	project   *config.ProjectFile
}

// resolveTarget combines the project file with command-line overrides.
// An explicit --file writes its outputs next to it unless --output-dir is set.
func resolveTarget(file string, langs []string, outputDir string) (*target, error) {
	pf, err := config.LoadProjectFile(rootDir)
	if err != nil {
		return nil, err
	}
	if pf == nil {
		pf = config.DefaultProjectFile()
	}

	t := &target{source: pf.SourcePath(rootDir), languages: pf.Languages, project: pf}
	t.output = func(lang string) string { return pf.OutputPath(rootDir, lang) }

	if file != "" {
		t.source = file
		dir := filepath.Dir(file)
		t.output = func(lang string) string { return filepath.Join(dir, config.OutputName(lang)) }
	}
	if outputDir != "" {
		t.output = func(lang string) string { return filepath.Join(outputDir, config.OutputName(lang)) }
	}
	if len(langs) > 0 {
		normalized, err := config.NormalizeLanguages(langs)
		if err != nil {
			return nil, err
		}
		t.languages = normalized
	}

	if !fileExists(t.source) {
		return nil, fmt.Errorf("file %s does not exist", t.source)
	}
	return t, nil
}

func newUploadCmd() *cobra.Command {
	var (
		file      string
		langs     []string
		serverURL string
		outputDir string
		timeout   time.Duration
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Translate a file through a proptrans server",
		Long: `Upload a .properties file to a translation service once per language
and save each result as messages_<lang>.properties.

A failure for one language does not stop the others. Requests are not
retried. Languages whose source entries are unchanged since their last
successful translation are skipped unless --force is given.

Examples:
  proptrans upload
  proptrans upload -f src/main/resources/messages.properties -l fr,es,de
  proptrans upload --server https://translate.example.com/translate --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runUpload(ctx, uploadArgs{
				file: file, langs: langs, serverURL: serverURL,
				outputDir: outputDir, timeout: timeout, force: force,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File to upload (default: source from .proptrans.yaml, or messages.properties)")
	cmd.Flags().StringSliceVarP(&langs, "languages", "l", nil, "Comma-separated target languages (default: fr,es,de)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Translation endpoint (default: "+config.DefaultServerURL+")")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for translated files")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (default: 5m)")
	cmd.Flags().BoolVar(&force, "force", false, "Translate even if the source is unchanged")

	return cmd
}

type uploadArgs struct {
	file, serverURL, outputDir string
	langs                      []string
	timeout                    time.Duration
	force                      bool
}

var errSomeFailed = errors.New("some languages failed")

func runUpload(ctx context.Context, a uploadArgs) error {
	t, err := resolveTarget(a.file, a.langs, a.outputDir)
	if err != nil {
		return err
	}

	serverURL := t.project.Server
	if a.serverURL != "" {
		serverURL = a.serverURL
	}
	timeout := t.project.Timeout
	if a.timeout > 0 {
		timeout = a.timeout
	}

	lock, err := lockfile.Load(rootDir)
	if err != nil {
		return err
	}

	logInfo("Uploading %s to %s", t.source, serverURL)

	outcomes, err := client.New(serverURL, timeout).Run(ctx, client.Job{
		Source:     t.source,
		Languages:  t.languages,
		OutputPath: t.output,
		Lock:       lock,
		LockRoot:   rootDir,
		Force:      a.force,
		OnStart: func(lang string) {
			logInfo("Translating to %s...", lang)
		},
	})
	if err != nil {
		return err
	}

	reportOutcomes(outcomes)

	if err := lock.Save(); err != nil {
		logWarning("Could not save %s: %v", lockfile.LockFileName, err)
	}
	if client.Failed(outcomes) {
		return errSomeFailed
	}
	return nil
}

func reportOutcomes(outcomes []client.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			logInfo("%s is up to date, skipping (use --force to translate again)", o.Path)
		case o.Err != nil:
			logError("%v", o.Err)
		case o.Failures > 0:
			logWarning("Translated file saved as %s", o.Path)
			logWarning("%s", i18n.Nf("%d entry left untranslated", "%d entries left untranslated", o.Failures))
		default:
			logSuccess("Translated file saved as %s", o.Path)
		}
	}
}
