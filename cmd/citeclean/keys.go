package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/citeclean/pkg/bibtex"
	"github.com/aretw0/citeclean/pkg/core"
)

var (
	keysJSON bool
)

var keysCmd = &cobra.Command{
	Use:   "keys <file.bib>",
	Short: "List the entry keys of a reference database",
	Long:  `Parse a .bib file and print its entries, one per line, in document order. Nothing is scanned.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !core.IsReferenceDatabase(path) {
			return core.ErrUnsupportedDocument
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read reference database: %w", err)
		}

		db, err := bibtex.ParseString(string(data))
		if err != nil {
			return withPath(path, err)
		}

		out := cmd.OutOrStdout()
		if keysJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			entries := db.Entries
			if entries == nil {
				entries = []core.Entry{}
			}
			return encoder.Encode(entries)
		}

		for _, e := range db.Entries {
			fmt.Fprintf(out, "%s:%d:%d: @%s %s\n", path, e.Line, e.Column, e.Type, e.Key)
		}
		return nil
	},
}

// withPath attaches the database path to a positioned parse error.
func withPath(path string, err error) error {
	var pe *core.ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.Flags().BoolVar(&keysJSON, "json", false, "Output in JSON format")
}
