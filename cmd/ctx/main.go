package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"

	ctx "github.com/ctxtool/ctx"
	"github.com/ctxtool/ctx/session"
	"github.com/ctxtool/ctx/tree"
)

// Args defines the command-line arguments.
type Args struct {
	Root string `arg:"positional" default:"." help:"Root directory to process"`

	IncludeAll bool `arg:"-i,--include-all" help:"Pre-include all files (pick what to exclude)"`
	ExcludeAll bool `arg:"-e,--exclude-all" help:"Pre-exclude all files (pick what to include); the default"`

	Include []string `arg:"--include,separate" help:"Glob pattern to pre-include (repeatable)"`
	Exclude []string `arg:"--exclude,separate" help:"Glob pattern to pre-exclude (repeatable, wins over --include)"`

	Output string `arg:"-o,--output" help:"Output destination: '-' for stdout, a file path, or empty for clipboard"`
	Direct bool   `arg:"--direct" help:"Skip the interactive picker and export the pre-seeded selection"`

	RespectGitignore *bool  `arg:"--respect-gitignore" help:"Respect .gitignore files (default true)"`
	ShowHidden       *bool  `arg:"--show-hidden" help:"Include hidden files and directories"`
	MaxFileSize      *int64 `arg:"--max-file-size" help:"Maximum file size in bytes to include"`

	LineNumbers    bool   `arg:"--line-numbers" help:"Prefix file content with line numbers"`
	Metadata       bool   `arg:"--metadata" help:"Include a metadata header in the output"`
	TokenEstimator string `arg:"--token-estimator" default:"simple" help:"Token estimator for the status line: 'simple' or 'tiktoken'"`
}

func (Args) Description() string {
	return "ctx assembles selected files from a directory tree into one Markdown document,\nwith an interactive fuzzy finder for picking the files."
}

func main() {
	var args Args
	arg.MustParse(&args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(args, logger); err != nil {
		fmt.Fprintf(os.Stderr, "ctx: %v\n", err)
		os.Exit(1)
	}
}

func run(args Args, logger *slog.Logger) error {
	if args.IncludeAll && args.ExcludeAll {
		return fmt.Errorf("--include-all and --exclude-all are mutually exclusive")
	}

	info, err := os.Stat(args.Root)
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", args.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", args.Root)
	}

	settings := ctx.LoadSettingsOrDefault()
	if args.RespectGitignore != nil {
		settings.RespectGitignore = *args.RespectGitignore
	}
	if args.ShowHidden != nil {
		settings.ShowHidden = *args.ShowHidden
	}
	if args.MaxFileSize != nil {
		settings.MaxFileSize = *args.MaxFileSize
	}
	if args.LineNumbers {
		settings.IncludeLineNumbers = true
	}
	if args.Metadata {
		settings.IncludeMetadata = true
	}

	estimator, err := ctx.NewTokenEstimator(args.TokenEstimator)
	if err != nil {
		return err
	}

	scanner := &ctx.Scanner{
		RespectGitignore: settings.RespectGitignore,
		ShowHidden:       settings.ShowHidden,
		MaxFileSize:      settings.MaxFileSize,
	}
	entries, err := scanner.Scan(args.Root)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", args.Root, err)
	}

	t, err := tree.Build(entries)
	if err != nil {
		return err
	}

	polarity := tree.Excluded
	if args.IncludeAll {
		polarity = tree.Included
	}
	t.Seed(polarity)

	// Includes first, then excludes: within the engine patterns are
	// strictly last-writer-wins, so this order makes --exclude win for
	// any file both match.
	for _, glob := range args.Include {
		if err := t.ApplyPattern(tree.Included, glob); err != nil {
			return err
		}
	}
	for _, glob := range args.Exclude {
		if err := t.ApplyPattern(tree.Excluded, glob); err != nil {
			return err
		}
	}

	output := args.Output
	if output == "" && settings.DefaultOutputDir != "" {
		output = filepath.Join(settings.DefaultOutputDir, ctx.DefaultFilename(args.Root))
	}

	writer := &ctx.Writer{
		Formatter: &ctx.Formatter{
			IncludeMetadata:    settings.IncludeMetadata,
			IncludeLineNumbers: settings.IncludeLineNumbers,
		},
		MaxClipboardSize: settings.MaxClipboardSize,
	}

	if args.Direct {
		included := t.ResolveIncluded()
		return writer.Deliver(args.Root, included, output)
	}

	sess := session.New(t)
	included, err := runPicker(sess, args.Root, estimator, logger)
	if err != nil {
		return err
	}
	if sess.Status() != session.Exporting {
		return nil // cancelled, no output
	}

	return writer.Deliver(args.Root, included, output)
}
