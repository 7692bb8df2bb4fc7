package world

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"testlens/internal/logging"
)

// ParserFactory routes parse requests to the appropriate CodeParser based on
// file extension.
type ParserFactory struct {
	mu          sync.RWMutex
	parsers     map[string]CodeParser // extension -> parser (e.g. ".cs" -> CSharpCodeParser)
	projectRoot string
}

// NewParserFactory creates a ParserFactory with the given project root.
// The project root is used to generate repo-anchored Ref URIs.
func NewParserFactory(projectRoot string) *ParserFactory {
	logging.ScanDebug("Creating ParserFactory with project root: %s", projectRoot)
	f := &ParserFactory{
		parsers:     make(map[string]CodeParser),
		projectRoot: projectRoot,
	}
	f.Register(NewCSharpCodeParser(projectRoot))
	return f
}

// Register adds a parser for its supported extensions.
// If a parser is already registered for an extension, it is replaced.
func (f *ParserFactory) Register(parser CodeParser) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ext := range parser.SupportedExtensions() {
		ext = normalizeExtension(ext)
		logging.ScanDebug("ParserFactory: registering %s parser for extension %s",
			parser.Language(), ext)
		f.parsers[ext] = parser
	}
}

// GetParser returns the parser for a given file path.
// Returns nil if no parser is registered for the file's extension.
func (f *ParserFactory) GetParser(path string) CodeParser {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ext := normalizeExtension(filepath.Ext(path))
	return f.parsers[ext]
}

// HasParser returns true if a parser exists for the given file path.
func (f *ParserFactory) HasParser(path string) bool {
	return f.GetParser(path) != nil
}

// Parse extracts CodeElements from a file using the appropriate parser.
// Returns an error if no parser is registered for the file's extension.
func (f *ParserFactory) Parse(path string, content []byte) ([]CodeElement, error) {
	parser := f.GetParser(path)
	if parser == nil {
		return nil, fmt.Errorf("no parser registered for extension: %s", filepath.Ext(path))
	}
	return parser.Parse(path, content)
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
