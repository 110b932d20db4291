package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"AuthentiGo/pkg/analyzer"
	"AuthentiGo/pkg/analyzer/image/authenticity"
	"AuthentiGo/pkg/config"
	"AuthentiGo/pkg/filehandler"
	"AuthentiGo/pkg/models"
)

type analyzeFlags struct {
	file      string
	dir       string
	url       string
	urlFile   string
	outputDir string
	format    string
	workers   int
	recursive bool
	verbose   bool
	json      bool
}

var analyzeOpts analyzeFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score images from a file, a directory or URLs",
	Example: `  authentigo analyze --file photo.jpg
  authentigo analyze --dir ./images --recursive --workers 8
  authentigo analyze --url https://example.com/image.png --json
  authentigo analyze --urlfile urls.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := analyzeOpts
		if f.file == "" && f.dir == "" && f.url == "" && f.urlFile == "" {
			return errors.New("one of --file, --dir, --url or --urlfile is required")
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Analysis.Workers = f.workers
		}

		if f.json {
			out = cmd.ErrOrStderr()
		} else {
			out = cmd.OutOrStdout()
		}

		return runAnalyze(cmd.Context(), cfg, f, cmd.OutOrStdout())
	},
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVar(&analyzeOpts.file, "file", "", "Path to a single file for analysis")
	flags.StringVar(&analyzeOpts.dir, "dir", "", "Path to directory of files for analysis")
	flags.StringVar(&analyzeOpts.url, "url", "", "URL to download and analyze")
	flags.StringVar(&analyzeOpts.urlFile, "urlfile", "", "Path to file containing URLs to download and analyze")
	flags.StringVar(&analyzeOpts.outputDir, "outdir", "authentigo_output", "Directory to store downloaded files")
	flags.StringVar(&analyzeOpts.format, "format", "auto", "Force a format (png, jpeg, gif, bmp, tiff, webp)")
	flags.IntVar(&analyzeOpts.workers, "workers", 0, "Number of parallel workers (default from config)")
	flags.BoolVar(&analyzeOpts.recursive, "recursive", false, "Descend into subdirectories with --dir")
	flags.BoolVar(&analyzeOpts.verbose, "verbose", false, "Enable verbose output")
	flags.BoolVar(&analyzeOpts.json, "json", false, "Write results as JSON to stdout")
}

// jsonOutcome is one element of the --json output
type jsonOutcome struct {
	Path   string                 `json:"path"`
	Result *models.AnalysisResult `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runAnalyze(ctx context.Context, cfg *config.Config, f analyzeFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	registry := authenticity.NewDefaultRegistry()

	paths, err := collectInputs(ctx, cfg, f)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		printWarning("No files to analyze")
		return nil
	}

	printInfo("Analyzing %d file(s) with %d worker(s)", len(paths), cfg.Analysis.Workers)

	options := analyzer.AnalysisOptions{
		Verbose:      f.verbose,
		Format:       f.format,
		MaxFileBytes: cfg.Analysis.MaxFileBytes,
		MaxPixels:    cfg.Analysis.MaxPixels,
	}
	outcomes, err := analyzer.AnalyzeFiles(ctx, registry, paths, cfg.Analysis.Workers, options)

	for _, o := range outcomes {
		switch {
		case o.Path == "":
			// not reached before cancellation
		case o.Err != nil:
			printError("%s: %v", o.Path, o.Err)
		default:
			displayAnalysisResult(o.Result, f.verbose)
		}
	}

	summary := analyzer.Summarize(outcomes)
	if len(paths) > 1 {
		printSummary(summary)
	}

	if f.json {
		if err := writeJSONOutcomes(stdout, outcomes); err != nil {
			return err
		}
	}

	if err != nil {
		return err
	}
	if summary.Total > 0 && summary.Failed == summary.Total {
		return errors.New("no file could be analyzed")
	}
	return nil
}

// collectInputs resolves every input flag to local file paths, downloading URLs first
func collectInputs(ctx context.Context, cfg *config.Config, f analyzeFlags) ([]string, error) {
	var paths []string

	var urls []string
	if f.urlFile != "" {
		printInfo("Processing URLs from file: %s", f.urlFile)
		lines, err := filehandler.ReadLines(f.urlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read URL file: %w", err)
		}
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue // Skip empty lines and comments
			}
			urls = append(urls, line)
		}
	}
	if f.url != "" {
		urls = append(urls, f.url)
	}

	downloadDir := filepath.Join(f.outputDir, "downloads")
	for _, u := range urls {
		if !filehandler.IsURL(u) {
			printError("Not an http(s) URL: %s", u)
			continue
		}
		printInfo("Downloading from %s", u)
		p, err := filehandler.DownloadFromURL(ctx, u, downloadDir, cfg.Analysis.DownloadTimeout, cfg.Analysis.MaxFileBytes)
		if err != nil {
			printError("Failed to download from %s: %v", u, err)
			continue
		}
		printSuccess("Downloaded to %s", p)
		paths = append(paths, p)
	}

	if f.file != "" {
		if _, err := os.Stat(f.file); err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", f.file, err)
		}
		paths = append(paths, f.file)
	}

	if f.dir != "" {
		printInfo("Analyzing directory: %s", f.dir)
		files, err := filehandler.FilesInDirectory(f.dir, filehandler.ImageExtensions(), f.recursive)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		printInfo("Found %d files to analyze", len(files))
		paths = append(paths, files...)
	}

	return paths, nil
}

func writeJSONOutcomes(w io.Writer, outcomes []analyzer.FileOutcome) error {
	list := make([]jsonOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Path == "" {
			continue
		}
		j := jsonOutcome{Path: o.Path, Result: o.Result}
		if o.Err != nil {
			j.Error = o.Err.Error()
		}
		list = append(list, j)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
