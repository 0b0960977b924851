// Package config loads proptrans configuration: the per-project
// .proptrans.yaml read by the CLI and the server configuration read by
// "proptrans serve".
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/proptrans/langmeta"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// ProjectFile is the top-level .proptrans.yaml structure.
type ProjectFile struct {
	// Server is the translation endpoint used by "proptrans upload".
	Server string `yaml:"server,omitempty"`
	// Source is the .properties file to translate, relative to the project root.
	Source string `yaml:"source,omitempty"`
	// Languages lists the target language codes.
	Languages []string `yaml:"languages,omitempty"`
	// OutputDir receives messages_<lang>.properties (default: the source's directory).
	OutputDir string `yaml:"output_dir,omitempty"`
	// Timeout bounds each upload request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Provider, Model and Prompt configure "proptrans local".
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Prompt   string `yaml:"prompt,omitempty"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// ProjectFileName is the default project file name.
const ProjectFileName = ".proptrans.yaml"

const (
	// DefaultServerURL is where "proptrans serve" listens by default.
	DefaultServerURL = "http://localhost:8080/translate"
	// DefaultSource is the conventional base bundle name.
	DefaultSource = "messages.properties"
	// DefaultTimeout bounds one upload; large files take minutes to translate.
	DefaultTimeout = 5 * time.Minute
)

// DefaultLanguages are translated when neither flags nor the project file
// name any.
var DefaultLanguages = []string{"fr", "es", "de"}

// DefaultProjectFile returns the configuration used when no project file exists.
func DefaultProjectFile() *ProjectFile {
	pf := &ProjectFile{}
	pf.applyDefaults()
	return pf
}

func (pf *ProjectFile) applyDefaults() {
	if pf.Server == "" {
		pf.Server = DefaultServerURL
	}
	if pf.Source == "" {
		pf.Source = DefaultSource
	}
	if len(pf.Languages) == 0 {
		pf.Languages = append([]string(nil), DefaultLanguages...)
	}
	if pf.OutputDir == "" {
		pf.OutputDir = filepath.Dir(pf.Source)
	}
	if pf.Timeout <= 0 {
		pf.Timeout = DefaultTimeout
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadProjectFile loads and validates .proptrans.yaml from the given
// directory. Returns nil if no project file exists.
func LoadProjectFile(rootDir string) (*ProjectFile, error) {
	path := filepath.Join(rootDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	pf.applyDefaults()

	langs, err := NormalizeLanguages(pf.Languages)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pf.Languages = langs

	return &pf, nil
}

// NormalizeLanguages normalizes each code, drops duplicates, and rejects
// codes outside the supported set.
func NormalizeLanguages(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	var bad []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			code := langmeta.Normalize(part)
			if !langmeta.IsSupported(code) {
				bad = append(bad, strings.TrimSpace(part))
				continue
			}
			if !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		}
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("unsupported language code(s): %s", strings.Join(bad, ", "))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// OutputName returns the file name written for a target language.
func OutputName(lang string) string {
	return "messages_" + lang + ".properties"
}

// OutputPath returns the output file path for lang under the project root.
func (pf *ProjectFile) OutputPath(rootDir, lang string) string {
	if filepath.IsAbs(pf.OutputDir) {
		return filepath.Join(pf.OutputDir, OutputName(lang))
	}
	return filepath.Join(rootDir, pf.OutputDir, OutputName(lang))
}

// SourcePath returns the source file path under the project root.
func (pf *ProjectFile) SourcePath(rootDir string) string {
	if filepath.IsAbs(pf.Source) {
		return pf.Source
	}
	return filepath.Join(rootDir, pf.Source)
}

// Save writes the project file into rootDir.
func (pf *ProjectFile) Save(rootDir string) error {
	data, err := yaml.Marshal(pf)
	if err != nil {
		return fmt.Errorf("marshaling project file: %w", err)
	}
	path := filepath.Join(rootDir, ProjectFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
