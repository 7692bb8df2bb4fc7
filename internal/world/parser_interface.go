package world

// CodeParser defines the contract for language-specific code element parsers.
// The analyzer only needs C# today, but the factory keeps the door open for
// F#/VB projects inside the same solution without touching the analysis layer.
type CodeParser interface {
	// Parse extracts CodeElements from source content.
	// The path is used for generating stable Ref URIs and error messages.
	// Content is the raw file bytes (allows parsing in-memory content).
	Parse(path string, content []byte) ([]CodeElement, error)

	// SupportedExtensions returns the file extensions this parser handles.
	// Extensions include the leading dot (e.g. ".cs").
	SupportedExtensions() []string

	// Language returns the short language identifier used in Ref URIs.
	Language() string
}

// ParseError represents a non-fatal parsing issue.
type ParseError struct {
	Path    string
	Message string
}
