package ctx

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// textExtensions covers file extensions treated as text without looking
// at content.
var textExtensions = map[string]bool{
	"txt": true, "md": true, "rs": true, "py": true, "js": true,
	"ts": true, "jsx": true, "tsx": true, "html": true, "css": true,
	"scss": true, "sass": true, "json": true, "yaml": true, "yml": true,
	"toml": true, "xml": true, "csv": true, "sql": true, "sh": true,
	"bash": true, "zsh": true, "fish": true, "ps1": true, "bat": true,
	"cmd": true, "dockerfile": true, "makefile": true, "cmake": true,
	"c": true, "cpp": true, "cc": true, "cxx": true, "h": true,
	"hpp": true, "hxx": true, "java": true, "kt": true, "kts": true,
	"scala": true, "go": true, "rb": true, "php": true, "swift": true,
	"dart": true, "lua": true, "perl": true, "r": true, "jl": true,
	"hs": true, "elm": true, "clj": true, "cljs": true, "ex": true,
	"exs": true, "erl": true, "hrl": true, "vim": true, "vimrc": true,
	"el": true, "lisp": true, "scm": true, "rkt": true, "ml": true,
	"mli": true, "fs": true, "fsi": true, "fsx": true, "pas": true,
	"asm": true, "s": true, "config": true, "conf": true, "ini": true,
	"properties": true, "env": true, "gitignore": true,
	"gitattributes": true, "dockerignore": true, "editorconfig": true,
	"lock": true, "sum": true, "mod": true,
}

// textNames covers well-known extensionless text files.
var textNames = map[string]bool{
	"readme": true, "license": true, "changelog": true, "authors": true,
	"contributors": true, "makefile": true, "dockerfile": true,
	"vagrantfile": true, "gemfile": true, "rakefile": true,
	"procfile": true, "cmakelists": true, "configure": true,
	"install": true, "news": true, "todo": true, "copying": true,
	"manifest": true,
}

// IsTextPath classifies a file as text by extension, falling back to
// well-known extensionless names. Classification happens at traversal
// time so the selection core never has to re-filter.
func IsTextPath(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext != "" {
		return textExtensions[ext]
	}
	name := strings.ToLower(filepath.Base(path))
	return textNames[name]
}

// IsBinaryContent sniffs content by sampling the first 100 runes; more
// than 10% non-printable runes marks it binary. Catches binaries that
// slipped past the extension check.
func IsBinaryContent(content []byte) bool {
	const sampleSize = 100
	var nonPrintable, total int

	for i := 0; i < len(content) && total < sampleSize; {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError {
			nonPrintable++
		} else if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
		i += size
		total++
	}

	if total == 0 {
		return false
	}
	return float64(nonPrintable)/float64(total) > 0.1
}
