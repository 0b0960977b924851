package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/config"
	"github.com/minios-linux/proptrans/langmeta"
)

func newInitCmd() *cobra.Command {
	var (
		serverURL string
		source    string
		langs     []string
		outputDir string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .proptrans.yaml project file",
		Long: `Write a .proptrans.yaml into the project root with the translation server,
the source file and the target languages. "upload" and "local" read it
when run in that directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(rootDir, config.ProjectFileName)
			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			pf := &config.ProjectFile{Server: serverURL, Source: source, OutputDir: outputDir}
			if len(langs) > 0 {
				normalized, err := config.NormalizeLanguages(langs)
				if err != nil {
					return err
				}
				pf.Languages = normalized
			}
			defaults := config.DefaultProjectFile()
			if pf.Server == "" {
				pf.Server = defaults.Server
			}
			if pf.Source == "" {
				pf.Source = defaults.Source
			}
			if len(pf.Languages) == 0 {
				pf.Languages = defaults.Languages
			}

			if err := pf.Save(rootDir); err != nil {
				return err
			}
			logSuccess("Created %s", path)
			logInfo("Source: %s, languages: %s", pf.Source, strings.Join(pf.Languages, ", "))
			if !fileExists(pf.SourcePath(rootDir)) {
				logWarning("Source file %s does not exist yet", pf.SourcePath(rootDir))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Translation endpoint (default: "+config.DefaultServerURL+")")
	cmd.Flags().StringVar(&source, "source", "", "Source .properties file (default: "+config.DefaultSource+")")
	cmd.Flags().StringSliceVarP(&langs, "languages", "l", nil, "Comma-separated target languages (default: fr,es,de)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for translated files (default: next to the source)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project file")
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language codes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, code := range langmeta.Supported() {
				meta := langmeta.Resolve(code)
				fmt.Fprintf(out, "%-4s %-22s %s\n", code, meta.Name, meta.Native)
			}
		},
	}
}
