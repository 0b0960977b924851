package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/proptrans/client"
	"github.com/minios-linux/proptrans/lockfile"
	"github.com/minios-linux/proptrans/placeholder"
	"github.com/minios-linux/proptrans/propfile"
	"github.com/minios-linux/proptrans/translate"
)

func newInspectCmd() *cobra.Command {
	var showUnits bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show what would be translated in a file",
		Long: `Parse a .properties file and report its structure: entries, multi-line
entries, placeholders and the number of translation requests a run would
make. Nothing is sent to any provider.

With --units, every translation unit is printed as it would be sent, with
placeholders masked and continuation lines joined by ` + translate.Delimiter + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := propfile.ParseFile(args[0])
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), args[0], f, showUnits)

			lock, err := lockfile.Load(rootDir)
			if err != nil {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s\n", "Lock file:", lock.Summary())
			printPending(cmd.OutOrStdout(), lock, lockTarget(args[0]), client.SourceEntries(f))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showUnits, "units", false, "Print every translation unit")
	return cmd
}

func printInspect(w io.Writer, path string, f *propfile.File, showUnits bool) {
	st := f.Stats()
	units := translate.Units(f)

	placeholders := 0
	for _, e := range f.Entries {
		if v, ok := f.Value(e); ok {
			placeholders += len(placeholder.Find(v))
		}
	}

	newline := "LF"
	if f.Newline == "\r\n" {
		newline = "CRLF"
	}

	fmt.Fprintf(w, "\n%s\n", heading(path))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	row := func(label string, value any) {
		fmt.Fprintf(w, "  %-18s %v\n", label, value)
	}
	row("Lines:", st.Lines)
	row("Newlines:", newline)
	row("Entries:", st.Entries)
	row("Key/value:", st.KeyValues)
	row("Multi-line:", st.Multiline)
	row("Comments:", st.Comments)
	row("Blank:", st.Blank)
	row("Placeholders:", placeholders)
	row("Requests:", fmt.Sprintf("%d per language (+1 probe)", len(units)))
	row("Not translated:", st.Entries-len(units))

	if showUnits && len(units) > 0 {
		fmt.Fprintf(w, "\n  %s\n", heading("Units"))
		for _, u := range units {
			fmt.Fprintf(w, "  %s %s\n", dim(u.Key+":"), u.Text)
		}
	}
}

// printPending lists the outputs recorded from source and how many of
// their entries a new run would pick up.
func printPending(w io.Writer, lock *lockfile.LockFile, source string, entries map[string]string) {
	for _, target := range lock.Targets() {
		if lock.Outputs[target].Source != source {
			continue
		}
		status := successLabel("up to date")
		if n := len(lock.Changed(target, entries)); n > 0 {
			status = warnLabel(fmt.Sprintf("%d changed", n))
		}
		fmt.Fprintf(w, "    %s %s\n", dim(target+":"), status)
	}
}
