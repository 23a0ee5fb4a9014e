package analyze

import "strings"

// registry maps a lowercase file extension (including the leading dot) to
// the analyzer responsible for it (spec.md section 4.6, "A registry maps
// extension -> analyzer").
var registry = map[string]Analyzer{
	".py":  pythonAnalyzer{},
	".pyw": pythonAnalyzer{},

	".js":  jsTSAnalyzer{},
	".jsx": jsTSAnalyzer{},
	".ts":  jsTSAnalyzer{},
	".tsx": jsTSAnalyzer{},
	".mjs": jsTSAnalyzer{},
	".cjs": jsTSAnalyzer{},

	".rs": rustAnalyzer{},

	".sh":   shellAnalyzer{},
	".bash": shellAnalyzer{},
	".zsh":  shellAnalyzer{},
	".fish": shellAnalyzer{},

	".md":       markdownAnalyzer{},
	".markdown": markdownAnalyzer{},

	".json": jsonAnalyzer{},

	".yaml": yamlAnalyzer{},
	".yml":  yamlAnalyzer{},
}

// noop is the shared fallback instance for unrecognized extensions.
var noop Analyzer = noopAnalyzer{}

// ForPath returns the analyzer registered for path's extension, or the
// no-op analyzer if the extension is unrecognized.
func ForPath(path string) Analyzer {
	ext := extOf(path)
	if a, ok := registry[ext]; ok {
		return a
	}
	return noop
}

// extOf returns the lowercase extension of path, including the leading dot.
// Unlike path/filepath.Ext, this is a simple suffix search so it behaves
// identically regardless of OS path separator conventions upstream
// (FileDescriptor.Path is always forward-slash normalized).
func extOf(path string) string {
	slash := strings.LastIndexByte(path, '/')
	name := path
	if slash >= 0 {
		name = path[slash+1:]
	}
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ""
	}
	return strings.ToLower(name[dot:])
}
