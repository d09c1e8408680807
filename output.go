package ctx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Writer delivers the formatted document: to an explicit destination if
// one was given, otherwise clipboard-first with a file-prompt fallback.
type Writer struct {
	Formatter        *Formatter
	MaxClipboardSize int

	// Stdin/Stdout drive the interactive filename prompt; they default
	// to the process streams and exist so tests can script the prompt.
	Stdin  io.Reader
	Stdout io.Writer
}

// Deliver writes the document for paths (relative to rootPath).
//
// outputPath semantics follow the CLI contract: "-" writes to stdout, a
// path writes that file (creating parents), and empty means try the
// clipboard, falling back to a filename prompt when the content is too
// large or the clipboard is unavailable.
func (wr *Writer) Deliver(rootPath string, paths []string, outputPath string) error {
	switch {
	case outputPath == "-":
		return wr.Formatter.Format(wr.stdout(), rootPath, paths)
	case outputPath != "":
		if err := wr.writeFile(rootPath, paths, outputPath); err != nil {
			return err
		}
		fmt.Fprintf(wr.stdout(), "✓ Output written to: %s\n", outputPath)
		return nil
	}

	content, err := wr.Formatter.FormatString(rootPath, paths)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(wr.stdout(), "⚠ No content included. Please include at least one file.")
		return nil
	}

	if wr.MaxClipboardSize <= 0 || len(content) <= wr.MaxClipboardSize {
		if err := clipboard.WriteAll(content); err == nil {
			fmt.Fprintf(wr.stdout(), "✓ Output copied to clipboard (%d bytes)\n", len(content))
			return nil
		}
	} else {
		fmt.Fprintf(wr.stdout(), "⚠ Output is too large for clipboard (%d bytes > %s)\n",
			len(content), FormatSize(int64(wr.MaxClipboardSize)))
	}

	return wr.promptAndSave(rootPath, content)
}

func (wr *Writer) writeFile(rootPath string, paths []string, outputPath string) error {
	if parent := filepath.Dir(outputPath); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	defer file.Close()
	return wr.Formatter.Format(file, rootPath, paths)
}

func (wr *Writer) promptAndSave(rootPath, content string) error {
	fmt.Fprint(wr.stdout(), "Enter file path to save output (or press Enter for default): ")

	reader := bufio.NewReader(wr.stdin())
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	input := strings.TrimSpace(line)

	filename := input
	switch {
	case filename == "":
		filename = DefaultFilename(rootPath)
	case !strings.Contains(filename, "."):
		filename += ".md"
	}

	if parent := filepath.Dir(filename); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(wr.stdout(), "✓ Output saved to: %s\n", filename)
	return nil
}

// DefaultFilename derives a timestamped output name from the root
// directory's base name.
func DefaultFilename(rootPath string) string {
	base := filepath.Base(rootPath)
	if base == "." || base == string(filepath.Separator) {
		if abs, err := filepath.Abs(rootPath); err == nil {
			base = filepath.Base(abs)
		} else {
			base = "directory"
		}
	}
	return fmt.Sprintf("%s_ingest_%s.md", base, time.Now().UTC().Format("20060102_150405"))
}

func (wr *Writer) stdin() io.Reader {
	if wr.Stdin != nil {
		return wr.Stdin
	}
	return os.Stdin
}

func (wr *Writer) stdout() io.Writer {
	if wr.Stdout != nil {
		return wr.Stdout
	}
	return os.Stdout
}
