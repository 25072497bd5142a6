package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// recognizeDecoration matches one decoration against the closed set of
// recognized shapes: a bare name, a plain attribute access, or a call.
//
// A call whose callee is an attribute named "route" with a string-literal
// first argument is a framework route registration: it yields an
// API_Endpoint entity, an EXPOSES edge from the function, and per string in
// a methods= keyword an HTTP_Method entity scoped to the route plus a
// SUPPORTS edge. Which object exposes .route is deliberately not resolved;
// any receiver matches.
//
// Bare names and plain attributes yield a DECORATED_BY edge instead.
func (w *fileWalker) recognizeDecoration(funcName string, decorator *sitter.Node) {
	expr := firstNamedChild(decorator)
	if expr == nil {
		return
	}

	switch expr.Kind() {
	case "identifier":
		w.bundle.Relationships.Add(Relationship{funcName, RelDecoratedBy, nodeText(expr, w.code)})
	case "attribute":
		if name := flattenAttribute(expr, w.code); name != "" {
			w.bundle.Relationships.Add(Relationship{funcName, RelDecoratedBy, name})
		}
	case "call":
		w.recognizeRouteCall(funcName, expr)
	}
}

// recognizeRouteCall inspects a call-shaped decoration for the
// something.route("<path>", methods=[...]) registration pattern
func (w *fileWalker) recognizeRouteCall(funcName string, call *sitter.Node) {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "attribute" {
		return
	}
	if nodeText(callee.ChildByFieldName("attribute"), w.code) != "route" {
		return
	}

	args := call.ChildByFieldName("arguments")
	if args == nil {
		return
	}

	route := routePath(args, w.code)
	if route == "" {
		return
	}

	w.bundle.Entities.Add(Entity{KindAPIEndpoint, route, w.path})
	w.bundle.Endpoints.Add(Relationship{funcName, RelExposes, route})

	for _, verb := range routeMethods(args, w.code) {
		w.bundle.Entities.Add(Entity{KindHTTPMethod, verb, route})
		w.bundle.Endpoints.Add(Relationship{route, RelSupports, verb})
	}
}

// routePath returns the first positional string-literal argument, unquoted
func routePath(args *sitter.Node, code []byte) string {
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child.Kind() == "keyword_argument" {
			continue
		}
		if child.Kind() == "string" {
			return stringLiteral(child, code)
		}
		// First positional argument is not a string literal: no match
		return ""
	}
	return ""
}

// routeMethods collects string elements of a methods= keyword argument
func routeMethods(args *sitter.Node, code []byte) []string {
	for i := uint(0); i < args.NamedChildCount(); i++ {
		kwarg := args.NamedChild(i)
		if kwarg.Kind() != "keyword_argument" {
			continue
		}
		if nodeText(kwarg.ChildByFieldName("name"), code) != "methods" {
			continue
		}
		value := kwarg.ChildByFieldName("value")
		if value == nil || value.Kind() != "list" {
			return nil
		}
		var verbs []string
		for j := uint(0); j < value.NamedChildCount(); j++ {
			if element := value.NamedChild(j); element.Kind() == "string" {
				verbs = append(verbs, stringLiteral(element, code))
			}
		}
		return verbs
	}
	return nil
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}
