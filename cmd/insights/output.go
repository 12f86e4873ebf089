package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// outputFlags choose between terminal text, JSON and an HTML file
type outputFlags struct {
	path   string
	asJSON bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.path, "output", "", "write an HTML report to this file")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("output", "json")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeHTMLFile creates path, appending .html when missing, and hands the
// file to render. It returns the absolute path written.
func writeHTMLFile(path string, render func(io.Writer) error) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".html") {
		path += ".html"
	}

	file, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "creating output file")
	}
	defer file.Close()

	if err := render(file); err != nil {
		return "", eris.Wrap(err, "rendering report")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return absPath, nil
}
