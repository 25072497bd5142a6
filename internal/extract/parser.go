package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	atlaserr "github.com/codeatlas/codeatlas-go/internal/errors"
)

// SourceSuffixes are the file suffixes the walker recognizes
var SourceSuffixes = []string{".py", ".pyi", ".pyw"}

// IsSourceFile reports whether a path carries a recognized source suffix
func IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, s := range SourceSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// PythonParser wraps a tree-sitter parser bound to the Python grammar.
// Always call Close() when done (CGO memory management).
type PythonParser struct {
	parser *sitter.Parser
}

// NewPythonParser creates a parser for Python source
func NewPythonParser() (*PythonParser, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create tree-sitter parser")
	}

	language := sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set python language: %w", err)
	}

	return &PythonParser{parser: parser}, nil
}

// Close releases parser resources
func (p *PythonParser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses source code and returns the syntax tree.
// Caller must call tree.Close() when done.
func (p *PythonParser) Parse(code []byte) (*sitter.Tree, error) {
	tree := p.parser.Parse(code, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse code")
	}
	return tree, nil
}

// NormalizePath collapses a path to the canonical forward-slash form used as
// entity scope and File node name
func NormalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// WalkFile parses one file's source and produces its record bundle.
// A tree containing syntax errors is a ParseFailure: the caller skips the
// file and continues the repository walk.
func WalkFile(path string, code []byte) (*Bundle, error) {
	parser, err := NewPythonParser()
	if err != nil {
		return nil, atlaserr.ParseError(err, path)
	}
	defer parser.Close()

	tree, err := parser.Parse(code)
	if err != nil {
		return nil, atlaserr.ParseError(err, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, atlaserr.ParseError(fmt.Errorf("syntax error in source"), path)
	}

	w := newFileWalker(NormalizePath(path), code)
	w.visit(root)
	return w.bundle, nil
}

// AnalyzeFile reads and walks a single source file
func AnalyzeFile(path string) (*Bundle, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, atlaserr.IOError(err, path)
	}
	return WalkFile(path, code)
}

// nodeText extracts source text for a node using byte offsets
func nodeText(node *sitter.Node, code []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if int(end) > len(code) {
		end = uint(len(code))
	}
	return string(code[start:end])
}

// stringLiteral returns the content of a Python string node without quotes,
// or "" if the node is not a string
func stringLiteral(node *sitter.Node, code []byte) string {
	if node == nil || node.Kind() != "string" {
		return ""
	}
	text := nodeText(node, code)
	for _, prefix := range []string{"r", "b", "u", "f", "R", "B", "U", "F"} {
		text = strings.TrimPrefix(text, prefix)
	}
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}

// flattenAttribute renders an attribute chain as a dotted string,
// e.g. request.args.get. Non-name roots (calls, subscripts) are dropped so
// the result is always a bare dotted path.
func flattenAttribute(node *sitter.Node, code []byte) string {
	switch node.Kind() {
	case "identifier":
		return nodeText(node, code)
	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		base := ""
		if object != nil {
			base = flattenAttribute(object, code)
		}
		name := nodeText(attr, code)
		if base == "" {
			return name
		}
		return base + "." + name
	default:
		return ""
	}
}
