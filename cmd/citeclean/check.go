package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/citeclean"
	"github.com/aretw0/citeclean/pkg/adapters/fs"
	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/report"
)

var (
	checkRoot           string
	checkPattern        string
	checkExclude        []string
	checkTracked        bool
	checkSkipUnreadable bool
	checkConcurrency    int
	checkFormat         string
	checkOutput         string
	checkFailOnUnused   bool
	checkConfig         string
)

var checkCmd = &cobra.Command{
	Use:   "check <file.bib>",
	Short: "Report entries of a reference database that no manuscript cites",
	Long: `Parse the given .bib file, scan every manuscript of the project and print
a warning for each entry whose key never appears in any of them.

The project root is the nearest directory above the database holding a
.citeclean.yaml file or a .git entry, or the database's own directory.
Matching is a literal, case-sensitive substring search.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		logger := slog.Default()

		if !core.IsReferenceDatabase(path) {
			logger.Warn("skipping check", "path", path, "reason", core.ErrUnsupportedDocument)
			return core.ErrUnsupportedDocument
		}

		root := checkRoot
		if root == "" {
			var err error
			if root, err = citeclean.FindRoot(path); err != nil {
				return err
			}
		}

		cfg, err := loadCheckConfig(root)
		if err != nil {
			return err
		}

		opts := []citeclean.Option{
			citeclean.WithConfig(cfg),
			citeclean.WithLogger(logger),
		}
		flags := cmd.Flags()
		if flags.Changed("pattern") {
			opts = append(opts, citeclean.WithPattern(checkPattern))
		}
		if flags.Changed("exclude") {
			opts = append(opts, citeclean.WithExclude(checkExclude...))
		}
		if flags.Changed("tracked") {
			opts = append(opts, citeclean.WithTrackedOnly(checkTracked))
		}
		if flags.Changed("skip-unreadable") {
			policy := core.ReadPolicyAbort
			if checkSkipUnreadable {
				policy = core.ReadPolicySkip
			}
			opts = append(opts, citeclean.WithReadPolicy(string(policy)))
		}
		if flags.Changed("concurrency") {
			opts = append(opts, citeclean.WithConcurrency(checkConcurrency))
		}

		format := cfg.Output.Format
		if flags.Changed("format") {
			format = checkFormat
		}
		formatter, err := report.Lookup(format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, err := citeclean.New(ctx, root, opts...)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read reference database: %w", err)
		}

		rep, err := svc.Detect(ctx, core.Document{Path: path, Text: string(data)})
		if err != nil {
			return err
		}
		logger.Debug("check finished", "root", root, "unused", len(rep.Unused), "scanned", len(rep.Scanned), "state", svc.State())

		if err := writeReport(cmd, formatter, rep); err != nil {
			return err
		}

		if checkFailOnUnused && len(rep.Unused) > 0 {
			return fmt.Errorf("%w: %d", core.ErrUnusedReferences, len(rep.Unused))
		}
		return nil
	},
}

func loadCheckConfig(root string) (*citeclean.Config, error) {
	if checkConfig != "" {
		if _, err := os.Stat(checkConfig); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return citeclean.LoadConfigFile(checkConfig)
	}
	return citeclean.LoadConfig(root)
}

// writeReport renders to stdout, or atomically to --output.
func writeReport(cmd *cobra.Command, formatter report.Formatter, rep *core.Report) error {
	if checkOutput == "" {
		return formatter.Format(cmd.OutOrStdout(), rep)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, rep); err != nil {
		return err
	}
	if err := fs.WriteFileAtomic(checkOutput, buf.Bytes(), 0644); err != nil {
		return err
	}
	slog.Default().Info("report written", "path", checkOutput, "unused", len(rep.Unused))
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRoot, "root", "", "Project root to scan (default: detected from the database location)")
	checkCmd.Flags().StringVar(&checkPattern, "pattern", fs.DefaultPattern, "Glob selecting manuscripts, relative to the root")
	checkCmd.Flags().StringSliceVar(&checkExclude, "exclude", nil, "Glob of paths to skip (repeatable)")
	checkCmd.Flags().BoolVar(&checkTracked, "tracked", false, "Only scan manuscripts tracked by git")
	checkCmd.Flags().BoolVar(&checkSkipUnreadable, "skip-unreadable", false, "Skip manuscripts that cannot be read instead of failing")
	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 8, "Maximum manuscripts read at once (0 = unbounded)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "Output format: csv, json, text or yaml")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Write the report to a file instead of stdout")
	checkCmd.Flags().BoolVar(&checkFailOnUnused, "fail-on-unused", false, "Exit with status 2 when unused references are found")
	checkCmd.Flags().StringVar(&checkConfig, "config", "", "Path to a .citeclean.yaml file (default: searched above the root)")
}
