package world

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"testlens/internal/logging"
)

// CSharpCodeParser implements CodeParser for C# source files.
// It uses Tree-sitter for accurate AST parsing.
type CSharpCodeParser struct {
	projectRoot string
	parser      *sitter.Parser
}

// NewCSharpCodeParser creates a new C# parser rooted at projectRoot.
func NewCSharpCodeParser(projectRoot string) *CSharpCodeParser {
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())
	return &CSharpCodeParser{
		projectRoot: projectRoot,
		parser:      parser,
	}
}

// Language returns "cs" for Ref URI generation.
func (p *CSharpCodeParser) Language() string {
	return "cs"
}

// SupportedExtensions returns the C# extension.
func (p *CSharpCodeParser) SupportedExtensions() []string {
	return []string{".cs"}
}

// Parse extracts CodeElements from C# source code.
func (p *CSharpCodeParser) Parse(path string, content []byte) ([]CodeElement, error) {
	start := time.Now()
	logging.ScanDebug("CSharpCodeParser: parsing file: %s", filepath.Base(path))

	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		logging.Get(logging.CategoryScan).Error("CSharpCodeParser: parse failed: %s - %v", path, err)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	lines := strings.Split(string(content), "\n")
	relPath := p.relativePath(path)

	var elements []CodeElement
	p.walkNode(tree.RootNode(), path, relPath, "", "", content, lines, &elements)

	logging.ScanDebug("CSharpCodeParser: parsed %s - %d elements in %v",
		filepath.Base(path), len(elements), time.Since(start))
	return elements, nil
}

// walkNode recursively walks the AST and extracts CodeElements.
func (p *CSharpCodeParser) walkNode(
	node *sitter.Node,
	absPath, relPath, namespace, parentRef string,
	content []byte,
	lines []string,
	elements *[]CodeElement,
) {
	getText := func(n *sitter.Node) string {
		return string(content[n.StartByte():n.EndByte()])
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "namespace_declaration", "file_scoped_namespace_declaration":
			ns := namespace
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				ns = joinNamespace(namespace, getText(nameNode))
			}
			// File-scoped namespaces have no body node; members are siblings
			// handled by recursing into the declaration itself either way.
			if body := child.ChildByFieldName("body"); body != nil {
				p.walkNode(body, absPath, relPath, ns, parentRef, content, lines, elements)
			} else {
				p.walkNode(child, absPath, relPath, ns, parentRef, content, lines, elements)
			}

		case "class_declaration", "interface_declaration", "struct_declaration", "record_declaration", "enum_declaration":
			elem := p.parseTypeDecl(child, absPath, relPath, namespace, content, lines, getText)
			if elem != nil {
				*elements = append(*elements, *elem)
				if body := child.ChildByFieldName("body"); body != nil {
					p.walkNode(body, absPath, relPath, namespace, elem.Ref, content, lines, elements)
				}
			}

		case "method_declaration":
			elem := p.parseMemberDecl(child, ElementMethod, absPath, relPath, namespace, parentRef, content, lines, getText)
			if elem != nil {
				*elements = append(*elements, *elem)
			}

		case "constructor_declaration":
			elem := p.parseMemberDecl(child, ElementCtor, absPath, relPath, namespace, parentRef, content, lines, getText)
			if elem != nil {
				*elements = append(*elements, *elem)
			}

		case "property_declaration":
			elem := p.parseMemberDecl(child, ElementProperty, absPath, relPath, namespace, parentRef, content, lines, getText)
			if elem != nil {
				*elements = append(*elements, *elem)
			}

		default:
			// Recurse into other compound nodes (e.g. global statements)
			p.walkNode(child, absPath, relPath, namespace, parentRef, content, lines, elements)
		}
	}
}

// parseTypeDecl parses a class/interface/struct/record/enum declaration.
func (p *CSharpCodeParser) parseTypeDecl(
	node *sitter.Node,
	absPath, relPath, namespace string,
	content []byte,
	lines []string,
	getText func(*sitter.Node) string,
) *CodeElement {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := getText(nameNode)
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	elemType := ElementClass
	switch node.Type() {
	case "interface_declaration":
		elemType = ElementInterface
	case "struct_declaration":
		elemType = ElementStruct
	case "record_declaration":
		elemType = ElementRecord
	case "enum_declaration":
		elemType = ElementEnum
	}

	mods := collectModifiers(node, getText)

	return &CodeElement{
		Ref:        fmt.Sprintf("cs:%s:%s", relPath, name),
		Type:       elemType,
		File:       absPath,
		StartLine:  startLine,
		EndLine:    endLine,
		Signature:  signatureLine(lines, startLine),
		Visibility: visibilityFromModifiers(mods),
		Namespace:  namespace,
		Name:       name,
		IsStatic:   mods["static"],
		IsAbstract: mods["abstract"],
		BaseTypes:  p.collectBaseTypes(node, getText),
		Attributes: collectAttributes(node, getText),
	}
}

// parseMemberDecl parses a method, constructor, or property declaration.
func (p *CSharpCodeParser) parseMemberDecl(
	node *sitter.Node,
	elemType ElementType,
	absPath, relPath, namespace, parentRef string,
	content []byte,
	lines []string,
	getText func(*sitter.Node) string,
) *CodeElement {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	name := getText(nameNode)
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1

	var ref string
	if parentRef != "" {
		parts := strings.Split(parentRef, ":")
		parentName := parts[len(parts)-1]
		ref = fmt.Sprintf("cs:%s:%s.%s", relPath, parentName, name)
	} else {
		ref = fmt.Sprintf("cs:%s:%s", relPath, name)
	}

	mods := collectModifiers(node, getText)

	return &CodeElement{
		Ref:        ref,
		Type:       elemType,
		File:       absPath,
		StartLine:  startLine,
		EndLine:    endLine,
		Signature:  signatureLine(lines, startLine),
		Parent:     parentRef,
		Visibility: visibilityFromModifiers(mods),
		Namespace:  namespace,
		Name:       name,
		IsStatic:   mods["static"],
		IsAbstract: mods["abstract"],
		Parameters: collectParameters(node, getText),
		Attributes: collectAttributes(node, getText),
	}
}

// collectModifiers gathers modifier keywords on a declaration node.
func collectModifiers(node *sitter.Node, getText func(*sitter.Node) string) map[string]bool {
	mods := make(map[string]bool)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "modifier" {
			mods[getText(child)] = true
		}
	}
	return mods
}

// visibilityFromModifiers maps C# access modifiers to the two-level model.
func visibilityFromModifiers(mods map[string]bool) Visibility {
	if mods["public"] {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// collectAttributes gathers attribute names from attribute lists on a node.
// Attribute argument lists are stripped: [Theory], [InlineData(1, 2)] -> Theory, InlineData.
func collectAttributes(node *sitter.Node, getText func(*sitter.Node) string) []string {
	var attrs []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			attr := child.NamedChild(j)
			if attr.Type() != "attribute" {
				continue
			}
			name := ""
			if nameNode := attr.ChildByFieldName("name"); nameNode != nil {
				name = getText(nameNode)
			} else {
				name = getText(attr)
				if idx := strings.Index(name, "("); idx > 0 {
					name = name[:idx]
				}
			}
			if name != "" {
				attrs = append(attrs, name)
			}
		}
	}
	return attrs
}

// collectParameters extracts typed parameters from a parameter_list field.
func collectParameters(node *sitter.Node, getText func(*sitter.Node) string) []Parameter {
	paramList := node.ChildByFieldName("parameters")
	if paramList == nil {
		return nil
	}

	var params []Parameter
	for i := 0; i < int(paramList.NamedChildCount()); i++ {
		child := paramList.NamedChild(i)
		if child.Type() != "parameter" {
			continue
		}
		param := Parameter{}
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			param.Type = getText(typeNode)
		}
		if nameNode := child.ChildByFieldName("name"); nameNode != nil {
			param.Name = getText(nameNode)
		}
		if param.Type != "" || param.Name != "" {
			params = append(params, param)
		}
	}
	return params
}

// collectBaseTypes extracts base classes and interfaces from a base_list.
func (p *CSharpCodeParser) collectBaseTypes(node *sitter.Node, getText func(*sitter.Node) string) []string {
	var bases []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "base_list" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			base := child.NamedChild(j)
			text := strings.TrimSpace(getText(base))
			if text != "" {
				bases = append(bases, text)
			}
		}
	}
	return bases
}

// signatureLine returns the trimmed declaration line.
func signatureLine(lines []string, startLine int) string {
	if startLine > 0 && startLine <= len(lines) {
		return strings.TrimSpace(lines[startLine-1])
	}
	return ""
}

// joinNamespace appends a nested namespace segment.
func joinNamespace(outer, inner string) string {
	if outer == "" {
		return inner
	}
	return outer + "." + inner
}

// relativePath returns the path relative to project root.
func (p *CSharpCodeParser) relativePath(absPath string) string {
	rel, err := filepath.Rel(p.projectRoot, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}
