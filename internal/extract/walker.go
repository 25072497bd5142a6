package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// httpVerbs are the outbound request methods recognized on the requests
// client object
var httpVerbs = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

// webAppConstructors are the framework application constructors whose
// assignment target becomes a WebApp entity
var webAppConstructors = map[string]bool{
	"Flask":   true,
	"FastAPI": true,
}

// fileWalker traverses one file's syntax tree, tracking the enclosing class
// and function with explicit stacks so arbitrary nesting resolves correctly.
type fileWalker struct {
	path       string
	code       []byte
	bundle     *Bundle
	classStack []string
	funcStack  []string
}

func newFileWalker(path string, code []byte) *fileWalker {
	return &fileWalker{
		path:   path,
		code:   code,
		bundle: NewBundle(),
	}
}

func (w *fileWalker) currentClass() string {
	if len(w.classStack) == 0 {
		return ""
	}
	return w.classStack[len(w.classStack)-1]
}

func (w *fileWalker) currentFunc() string {
	if len(w.funcStack) == 0 {
		return ""
	}
	return w.funcStack[len(w.funcStack)-1]
}

// visit dispatches on node kind. Declaration nodes manage their own descent
// so scope is pushed before the body is visited; everything else recurses.
func (w *fileWalker) visit(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "import_statement":
		w.visitImport(node)
		return
	case "import_from_statement":
		w.visitImportFrom(node)
		return
	case "class_definition":
		w.visitClass(node, nil)
		return
	case "function_definition":
		w.visitFunction(node, nil)
		return
	case "decorated_definition":
		w.visitDecorated(node)
		return
	case "assignment":
		w.visitAssignment(node)
	case "call":
		w.visitCall(node)
	case "return_statement":
		w.visitReturn(node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		w.visit(node.Child(i))
	}
}

// visitImport handles `import a, b.c, d as e`: one Library entity and one
// IMPORTS relationship per imported module
func (w *fileWalker) visitImport(node *sitter.Node) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		var name string
		switch child.Kind() {
		case "dotted_name":
			name = nodeText(child, w.code)
		case "aliased_import":
			name = nodeText(child.ChildByFieldName("name"), w.code)
		}
		if name == "" {
			continue
		}
		w.bundle.Entities.Add(Entity{KindLibrary, name, w.path})
		w.bundle.Relationships.Add(Relationship{w.path, RelImports, name})
	}
}

// visitImportFrom handles `from M import a, b as c`: a Library entity for M,
// an IMPORTS relationship from the file, an Import entity per item scoped to
// the file, and a PROVIDES relationship from M to each item
func (w *fileWalker) visitImportFrom(node *sitter.Node) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	module := nodeText(moduleNode, w.code)

	w.bundle.Entities.Add(Entity{KindLibrary, module, w.path})
	w.bundle.Relationships.Add(Relationship{w.path, RelImports, module})

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		var item string
		switch child.Kind() {
		case "dotted_name":
			item = nodeText(child, w.code)
		case "aliased_import":
			item = nodeText(child.ChildByFieldName("name"), w.code)
		}
		if item == "" {
			continue
		}
		w.bundle.Entities.Add(Entity{KindImport, item, w.path})
		w.bundle.Relationships.Add(Relationship{module, RelProvides, item})
	}
}

// visitClass emits the Class entity and CONTAINS edge, records bare-name
// bases as INHERITS_FROM, then descends into the body with the class pushed.
// Base entities are scoped to this file even when declared elsewhere; the
// loader keys nodes by name so the approximation converges.
func (w *fileWalker) visitClass(node *sitter.Node, _ []*sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.code)

	w.bundle.Entities.Add(Entity{KindClass, name, w.path})
	w.bundle.Relationships.Add(Relationship{w.path, RelContains, name})

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			base := supers.NamedChild(i)
			if base.Kind() != "identifier" {
				continue
			}
			baseName := nodeText(base, w.code)
			w.bundle.Entities.Add(Entity{KindClass, baseName, w.path})
			w.bundle.Relationships.Add(Relationship{name, RelInheritsFrom, baseName})
		}
	}

	w.classStack = append(w.classStack, name)
	w.visit(node.ChildByFieldName("body"))
	w.classStack = w.classStack[:len(w.classStack)-1]
}

// visitDecorated unwraps a decorated definition: decorations are inspected
// before the declaration body is descended into
func (w *fileWalker) visitDecorated(node *sitter.Node) {
	var decorators []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "decorator" {
			decorators = append(decorators, child)
		}
	}

	definition := node.ChildByFieldName("definition")
	if definition == nil {
		return
	}
	switch definition.Kind() {
	case "function_definition":
		w.visitFunction(definition, decorators)
	case "class_definition":
		w.visitClass(definition, decorators)
	}
}

// visitFunction classifies the declaration as Method (inside a class) or
// Function (top level), runs the decoration recognizer, emits Parameter
// entities, then descends into the body with the function pushed
func (w *fileWalker) visitFunction(node *sitter.Node, decorators []*sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.code)
	isMethod := w.currentClass() != ""

	if isMethod {
		w.bundle.Entities.Add(Entity{KindMethod, name, w.currentClass()})
		w.bundle.Relationships.Add(Relationship{w.currentClass(), RelDefines, name})
	} else {
		w.bundle.Entities.Add(Entity{KindFunction, name, w.path})
		w.bundle.Relationships.Add(Relationship{w.path, RelContains, name})
	}

	for _, dec := range decorators {
		w.recognizeDecoration(name, dec)
	}

	w.visitParameters(name, node.ChildByFieldName("parameters"), isMethod)

	w.funcStack = append(w.funcStack, name)
	w.visit(node.ChildByFieldName("body"))
	w.funcStack = w.funcStack[:len(w.funcStack)-1]
}

// visitParameters emits a Parameter entity and ACCEPTS edge per declared
// parameter, excluding the implicit self-reference of instance methods
func (w *fileWalker) visitParameters(funcName string, params *sitter.Node, isMethod bool) {
	if params == nil {
		return
	}
	first := true
	for i := uint(0); i < params.NamedChildCount(); i++ {
		pname := parameterName(params.NamedChild(i), w.code)
		if pname == "" {
			continue
		}
		if first && isMethod && (pname == "self" || pname == "cls") {
			first = false
			continue
		}
		first = false
		w.bundle.Entities.Add(Entity{KindParameter, pname, funcName})
		w.bundle.Relationships.Add(Relationship{funcName, RelAccepts, pname})
	}
}

// parameterName extracts the bare identifier from any parameter shape
func parameterName(node *sitter.Node, code []byte) string {
	switch node.Kind() {
	case "identifier":
		return nodeText(node, code)
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == "identifier" {
				return nodeText(child, code)
			}
		}
	case "default_parameter", "typed_default_parameter":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			if nameNode.Kind() == "identifier" {
				return nodeText(nameNode, code)
			}
		}
	}
	return ""
}

// visitAssignment records Variable entities and DEFINES_VAR edges when inside
// a function, a FLOW_TO data-flow from the literal value or source variable,
// and WebApp entities for top-level framework-app constructions
func (w *fileWalker) visitAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}

	targets := assignmentTargets(left, w.code)
	if len(targets) == 0 {
		return
	}

	fn := w.currentFunc()
	if fn != "" {
		for _, target := range targets {
			w.bundle.Entities.Add(Entity{KindVariable, target, fn})
			w.bundle.Relationships.Add(Relationship{fn, RelDefinesVar, target})
		}
	} else if w.currentClass() == "" && isWebAppConstruction(right, w.code) {
		for _, target := range targets {
			w.bundle.Entities.Add(Entity{KindWebApp, target, w.path})
			w.bundle.Relationships.Add(Relationship{w.path, RelContains, target})
		}
	}

	if source := flowSource(right, w.code); source != "" {
		for _, target := range targets {
			w.bundle.DataFlows.Add(Relationship{source, RelFlowTo, target})
		}
	}
}

// assignmentTargets collects the simple name targets of an assignment left
// side; attribute and subscript targets are not tracked
func assignmentTargets(left *sitter.Node, code []byte) []string {
	switch left.Kind() {
	case "identifier":
		return []string{nodeText(left, code)}
	case "pattern_list", "tuple_pattern":
		var targets []string
		for i := uint(0); i < left.NamedChildCount(); i++ {
			if child := left.NamedChild(i); child.Kind() == "identifier" {
				targets = append(targets, nodeText(child, code))
			}
		}
		return targets
	}
	return nil
}

// flowSource stringifies an assignment value for data-flow tracking: the
// literal text for constants, the bare name for identifier sources
func flowSource(right *sitter.Node, code []byte) string {
	switch right.Kind() {
	case "string":
		return stringLiteral(right, code)
	case "integer", "float", "true", "false", "none":
		return nodeText(right, code)
	case "identifier":
		return nodeText(right, code)
	}
	return ""
}

// isWebAppConstruction matches calls to known framework app constructors
func isWebAppConstruction(right *sitter.Node, code []byte) bool {
	if right.Kind() != "call" {
		return false
	}
	fn := right.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return false
	}
	return webAppConstructors[nodeText(fn, code)]
}

// visitCall records a CALLS edge from the enclosing function to the bare
// callee name, plus USES_INPUT / MAKES_REQUEST semantic edges when the call
// target matches known request-input or outbound-request patterns
func (w *fileWalker) visitCall(node *sitter.Node) {
	fn := w.currentFunc()
	if fn == "" {
		return
	}

	callee := node.ChildByFieldName("function")
	if callee == nil {
		return
	}

	switch callee.Kind() {
	case "identifier":
		w.bundle.Calls.Add(Relationship{fn, RelCalls, nodeText(callee, w.code)})
	case "attribute":
		attr := nodeText(callee.ChildByFieldName("attribute"), w.code)
		if attr == "" {
			return
		}
		w.bundle.Calls.Add(Relationship{fn, RelCalls, attr})

		qualified := flattenAttribute(callee, w.code)
		switch {
		case strings.HasPrefix(qualified, "requests.") && httpVerbs[attr]:
			w.bundle.Relationships.Add(Relationship{fn, RelMakesRequest, attr})
		case strings.HasPrefix(qualified, "request."):
			w.bundle.Relationships.Add(Relationship{fn, RelUsesInput, qualified})
		}
	}
}

// visitReturn records RETURNS_FIELDS for literal mapping returns and
// RETURNS_FROM for returns that delegate to a bare-named call
func (w *fileWalker) visitReturn(node *sitter.Node) {
	fn := w.currentFunc()
	if fn == "" || node.NamedChildCount() == 0 {
		return
	}

	expr := node.NamedChild(0)
	switch expr.Kind() {
	case "dictionary":
		if keys := dictionaryKeys(expr, w.code); len(keys) > 0 {
			w.bundle.Relationships.Add(Relationship{fn, RelReturnsFields, formatKeyList(keys)})
		}
	case "call":
		callee := expr.ChildByFieldName("function")
		if callee != nil && callee.Kind() == "identifier" {
			w.bundle.Relationships.Add(Relationship{fn, RelReturnsFrom, nodeText(callee, w.code)})
		}
	}
}

// dictionaryKeys returns the mapping keys in declaration order
func dictionaryKeys(dict *sitter.Node, code []byte) []string {
	var keys []string
	for i := uint(0); i < dict.NamedChildCount(); i++ {
		pair := dict.NamedChild(i)
		if pair.Kind() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		if key == nil {
			continue
		}
		if key.Kind() == "string" {
			keys = append(keys, "'"+stringLiteral(key, code)+"'")
		} else {
			keys = append(keys, nodeText(key, code))
		}
	}
	return keys
}

// formatKeyList renders keys in the bracketed list form the target string
// carries, e.g. ['message']
func formatKeyList(keys []string) string {
	return "[" + strings.Join(keys, ", ") + "]"
}
