package world

// ElementType defines the semantic type of a code element.
type ElementType string

const (
	ElementClass     ElementType = "class"
	ElementInterface ElementType = "interface"
	ElementStruct    ElementType = "struct"
	ElementRecord    ElementType = "record"
	ElementEnum      ElementType = "enum"
	ElementMethod    ElementType = "method"
	ElementCtor      ElementType = "ctor"
	ElementProperty  ElementType = "property"
)

// Visibility defines the visibility of a code element.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Parameter is a constructor or method parameter.
type Parameter struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// CodeElement represents a semantic unit of source code with a stable reference.
type CodeElement struct {
	// Ref is the repo-anchored reference (e.g. "cs:Services/UserService.cs:UserService.Login")
	Ref string `json:"ref"`

	// Type is the semantic type (class, interface, method, ctor, ...)
	Type ElementType `json:"type"`

	// File is the source file path
	File string `json:"file"`

	// StartLine and EndLine are 1-indexed inclusive line numbers
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Signature is the declaration line
	Signature string `json:"signature"`

	// Parent is the ref of the containing element (class for methods/ctors)
	Parent string `json:"parent,omitempty"`

	// Visibility is public or private
	Visibility Visibility `json:"visibility"`

	// Namespace the element is declared in
	Namespace string `json:"namespace,omitempty"`

	// Name is the element's simple name
	Name string `json:"name"`

	// IsStatic and IsAbstract are modifier flags
	IsStatic   bool `json:"is_static,omitempty"`
	IsAbstract bool `json:"is_abstract,omitempty"`

	// Parameters are the injected dependencies for ctors, arguments for methods
	Parameters []Parameter `json:"parameters,omitempty"`

	// BaseTypes lists base classes and implemented interfaces (classes only)
	BaseTypes []string `json:"base_types,omitempty"`

	// Attributes lists attribute names on the element ("Fact", "Theory", "Test", ...)
	Attributes []string `json:"attributes,omitempty"`
}

// IsTestMethod reports whether the element carries a test framework attribute.
func (e *CodeElement) IsTestMethod() bool {
	if e.Type != ElementMethod {
		return false
	}
	for _, attr := range e.Attributes {
		switch attr {
		case "Fact", "Theory", "Test", "TestCase", "TestMethod", "DataTestMethod":
			return true
		}
	}
	return false
}
