package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// CypherBuilder builds safe, parameterized Cypher statements. Every value
// travels as a parameter; labels and keys are validated identifiers, which
// prevents Cypher injection from extracted source text.
type CypherBuilder struct {
	params  map[string]any
	counter int
}

// NewCypherBuilder creates a query builder
func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{params: make(map[string]any)}
}

// AddParam adds a parameter and returns its placeholder
func (b *CypherBuilder) AddParam(value any) string {
	name := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[name] = value
	return "$" + name
}

// Params returns all parameters for the query
func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// BuildMergeNode creates a MERGE statement that matches-or-creates a node of
// the given label keyed by the keyProps map, never duplicating
func (b *CypherBuilder) BuildMergeNode(label string, keyProps map[string]any, keyOrder []string) (string, error) {
	if !isValidIdentifier(label) {
		return "", fmt.Errorf("invalid node label: %s", label)
	}

	pairs := make([]string, 0, len(keyProps))
	for _, key := range keyOrder {
		if !isValidIdentifier(key) {
			return "", fmt.Errorf("invalid property key: %s", key)
		}
		value, ok := keyProps[key]
		if !ok {
			return "", fmt.Errorf("missing value for key: %s", key)
		}
		pairs = append(pairs, fmt.Sprintf("%s: %s", key, b.AddParam(value)))
	}

	return fmt.Sprintf("MERGE (n:%s {%s})", label, strings.Join(pairs, ", ")), nil
}

// BuildMergeEdge creates a statement matching two endpoints by name and
// merging a typed relationship between them. An empty endpoint label means
// an untyped name match on that side.
func (b *CypherBuilder) BuildMergeEdge(fromLabel, fromName, toLabel, toName, relation string) (string, error) {
	if fromLabel != "" && !isValidIdentifier(fromLabel) {
		return "", fmt.Errorf("invalid from label: %s", fromLabel)
	}
	if toLabel != "" && !isValidIdentifier(toLabel) {
		return "", fmt.Errorf("invalid to label: %s", toLabel)
	}
	if !isValidIdentifier(relation) {
		return "", fmt.Errorf("invalid relationship kind: %s", relation)
	}

	fromPattern := "(a"
	if fromLabel != "" {
		fromPattern += ":" + fromLabel
	}
	fromPattern += fmt.Sprintf(" {name: %s})", b.AddParam(fromName))

	toPattern := "(b"
	if toLabel != "" {
		toPattern += ":" + toLabel
	}
	toPattern += fmt.Sprintf(" {name: %s})", b.AddParam(toName))

	return fmt.Sprintf("MATCH %s, %s MERGE (a)-[r:%s]->(b) RETURN r",
		fromPattern, toPattern, relation), nil
}

// BuildCallEdge creates the CALLS resolution statement: source must be a
// Function- or Method-typed node, target a Function-, Method-, or
// Library-typed node. No matching pair means no rows and no edge, which is
// not an error.
func (b *CypherBuilder) BuildCallEdge(source, target string) string {
	return fmt.Sprintf(`MATCH (a), (b)
WHERE (a:Function OR a:Method) AND a.name = %s
AND (b:Function OR b:Method OR b:Library) AND b.name = %s
MERGE (a)-[r:CALLS]->(b)
RETURN r`, b.AddParam(source), b.AddParam(target))
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier reports whether a string is safe as a Cypher label,
// relationship kind, or property key
func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
