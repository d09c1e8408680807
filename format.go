package ctx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// languageHints maps file extensions to fenced-code-block language tags.
var languageHints = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".jsx":   "jsx",
	".tsx":   "tsx",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".sass":  "scss",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".sql":   "sql",
	".sh":    "bash",
	".bash":  "bash",
	".c":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".h":     "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".kts":   "kotlin",
	".scala": "scala",
	".md":    "markdown",
}

// Formatter renders the final ingest document: a tree diagram of the
// included files, an optional metadata header, then each file's content
// in a fenced code block.
type Formatter struct {
	IncludeMetadata    bool
	IncludeLineNumbers bool
}

// Format writes the document for the given included files (paths
// relative to rootPath, traversal order) to w.
func (f *Formatter) Format(w io.Writer, rootPath string, paths []string) error {
	if len(paths) > 0 {
		if _, err := fmt.Fprintf(w, "```\n%s```\n\n", renderTreeDiagram(paths)); err != nil {
			return err
		}
	}

	if f.IncludeMetadata {
		if err := f.writeHeader(w, rootPath, paths); err != nil {
			return err
		}
	}

	for i, p := range paths {
		if i > 0 {
			if _, err := io.WriteString(w, "\n\n"); err != nil {
				return err
			}
		}
		if err := f.writeFile(w, rootPath, p); err != nil {
			return err
		}
	}
	return nil
}

// FormatString renders the document into memory, for clipboard-sized
// outputs.
func (f *Formatter) FormatString(rootPath string, paths []string) (string, error) {
	var sb strings.Builder
	if err := f.Format(&sb, rootPath, paths); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (f *Formatter) writeHeader(w io.Writer, rootPath string, paths []string) error {
	var total int64
	sizes := make(map[string]int64, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(filepath.Join(rootPath, filepath.FromSlash(p))); err == nil {
			sizes[p] = info.Size()
			total += info.Size()
		}
	}

	fmt.Fprintf(w, "# Text Ingest Report\n")
	fmt.Fprintf(w, "**Root Directory:** %s\n", rootPath)
	fmt.Fprintf(w, "**Files Included:** %d\n", len(paths))
	fmt.Fprintf(w, "**Total Size:** %s\n", FormatSize(total))
	fmt.Fprintf(w, "**Generated:** %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(w, "\n## Included Files\n")
	for _, p := range paths {
		fmt.Fprintf(w, "- %s (%s)\n", p, FormatSize(sizes[p]))
	}
	_, err := io.WriteString(w, "\n\n")
	return err
}

func (f *Formatter) writeFile(w io.Writer, rootPath, relPath string) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", relPath); err != nil {
		return err
	}

	full := filepath.Join(rootPath, filepath.FromSlash(relPath))
	content, err := os.ReadFile(full)
	if err != nil {
		_, werr := fmt.Fprintf(w, "*Error reading file: %v*", err)
		return werr
	}
	if IsBinaryContent(content) {
		_, err := fmt.Fprintf(w, "*Skipped binary file*")
		return err
	}

	lang := languageHints[strings.ToLower(filepath.Ext(relPath))]
	if _, err := fmt.Fprintf(w, "```%s\n", lang); err != nil {
		return err
	}

	if f.IncludeLineNumbers {
		for i, line := range strings.Split(strings.TrimSuffix(string(content), "\n"), "\n") {
			if _, err := fmt.Fprintf(w, "%4d | %s\n", i+1, line); err != nil {
				return err
			}
		}
	} else {
		if _, err := w.Write(content); err != nil {
			return err
		}
		if len(content) > 0 && content[len(content)-1] != '\n' {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}

	_, err = io.WriteString(w, "```")
	return err
}

// diagramNode is a transient nested map used to render the tree block.
type diagramNode struct {
	children map[string]*diagramNode
}

func newDiagramNode() *diagramNode {
	return &diagramNode{children: make(map[string]*diagramNode)}
}

// renderTreeDiagram draws the included paths as a connector-style tree
// rooted at ".".
func renderTreeDiagram(paths []string) string {
	root := newDiagramNode()
	for _, p := range paths {
		cur := root
		for _, seg := range strings.Split(p, "/") {
			next, ok := cur.children[seg]
			if !ok {
				next = newDiagramNode()
				cur.children[seg] = next
			}
			cur = next
		}
	}

	var sb strings.Builder
	sb.WriteString(".\n")
	renderDiagramChildren(root, "", &sb)
	return sb.String()
}

func renderDiagramChildren(node *diagramNode, prefix string, sb *strings.Builder) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		last := i == len(names)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		fmt.Fprintf(sb, "%s%s%s\n", prefix, connector, name)
		renderDiagramChildren(node.children[name], childPrefix, sb)
	}
}

// FormatSize renders a byte count with binary units, one decimal above
// bytes.
func FormatSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	f := float64(size)
	i := 0
	for f >= 1024 && i < len(units)-1 {
		f /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", size, units[i])
	}
	return fmt.Sprintf("%.1f %s", f, units[i])
}
