package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	atlaserr "github.com/codeatlas/codeatlas-go/internal/errors"
)

// walk parses source as the file app/main.py and returns the record bundle
func walk(t *testing.T, source string) *Bundle {
	t.Helper()
	bundle, err := WalkFile("app/main.py", []byte(source))
	require.NoError(t, err)
	return bundle
}

func TestWalkFileImports(t *testing.T) {
	bundle := walk(t, `
import os
import json as j
from flask import Flask, request
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindLibrary, "os", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindLibrary, "json", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindLibrary, "flask", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindImport, "Flask", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindImport, "request", "app/main.py"}))

	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelImports, "os"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelImports, "json"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelImports, "flask"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"flask", RelProvides, "Flask"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"flask", RelProvides, "request"}))

	// The module itself never appears as a provided item
	assert.False(t, bundle.Relationships.Contains(Relationship{"flask", RelProvides, "flask"}))
}

func TestWalkFileTopLevelFunction(t *testing.T) {
	bundle := walk(t, `
def greet(name, prefix="Hello"):
    return prefix
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindFunction, "greet", "app/main.py"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelContains, "greet"}))

	assert.True(t, bundle.Entities.Contains(Entity{KindParameter, "name", "greet"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindParameter, "prefix", "greet"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"greet", RelAccepts, "name"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"greet", RelAccepts, "prefix"}))
}

func TestWalkFileClassAndMethods(t *testing.T) {
	bundle := walk(t, `
class Greeter(Base):
    def greet(self, name):
        return name
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindClass, "Greeter", "app/main.py"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelContains, "Greeter"}))

	// Bases are Class entities scoped to this file
	assert.True(t, bundle.Entities.Contains(Entity{KindClass, "Base", "app/main.py"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"Greeter", RelInheritsFrom, "Base"}))

	// Methods are scoped to the class and linked with DEFINES, not CONTAINS
	assert.True(t, bundle.Entities.Contains(Entity{KindMethod, "greet", "Greeter"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"Greeter", RelDefines, "greet"}))
	assert.False(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelContains, "greet"}))

	// self never becomes a parameter; name does
	assert.False(t, bundle.Entities.Contains(Entity{KindParameter, "self", "greet"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindParameter, "name", "greet"}))
}

func TestWalkFileVariablesAndDataFlow(t *testing.T) {
	bundle := walk(t, `
def compute():
    limit = 5
    label = "total"
    copy = limit
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindVariable, "limit", "compute"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindVariable, "label", "compute"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindVariable, "copy", "compute"}))

	assert.True(t, bundle.Relationships.Contains(Relationship{"compute", RelDefinesVar, "limit"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"compute", RelDefinesVar, "label"}))

	assert.True(t, bundle.DataFlows.Contains(Relationship{"5", RelFlowTo, "limit"}))
	assert.True(t, bundle.DataFlows.Contains(Relationship{"total", RelFlowTo, "label"}))
	assert.True(t, bundle.DataFlows.Contains(Relationship{"limit", RelFlowTo, "copy"}))
}

func TestWalkFileCalls(t *testing.T) {
	bundle := walk(t, `
def handler():
    helper()
    client.send()
`)

	assert.True(t, bundle.Calls.Contains(Relationship{"handler", RelCalls, "helper"}))
	// Attribute callees record the bare method name
	assert.True(t, bundle.Calls.Contains(Relationship{"handler", RelCalls, "send"}))
}

func TestWalkFileTopLevelCallsIgnored(t *testing.T) {
	bundle := walk(t, `print("startup")`)
	assert.Equal(t, 0, bundle.Calls.Len())
}

func TestWalkFileRequestPatterns(t *testing.T) {
	bundle := walk(t, `
def fetch():
    name = request.args.get("name")
    resp = requests.get("http://upstream/api")
    return resp
`)

	assert.True(t, bundle.Relationships.Contains(Relationship{"fetch", RelUsesInput, "request.args.get"}))
	// Outbound requests record the bare verb
	assert.True(t, bundle.Relationships.Contains(Relationship{"fetch", RelMakesRequest, "get"}))
	// Both still count as calls
	assert.True(t, bundle.Calls.Contains(Relationship{"fetch", RelCalls, "get"}))
}

func TestWalkFileReturns(t *testing.T) {
	bundle := walk(t, `
def payload():
    return {"message": "hi", "count": 2}

def delegate():
    return payload()
`)

	assert.True(t, bundle.Relationships.Contains(
		Relationship{"payload", RelReturnsFields, "['message', 'count']"}))
	assert.True(t, bundle.Relationships.Contains(
		Relationship{"delegate", RelReturnsFrom, "payload"}))
}

func TestWalkFileWebApp(t *testing.T) {
	bundle := walk(t, `
from flask import Flask

app = Flask(__name__)
other = dict()
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindWebApp, "app", "app/main.py"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"app/main.py", RelContains, "app"}))

	// Only known framework constructors produce WebApp entities
	assert.False(t, bundle.Entities.Contains(Entity{KindWebApp, "other", "app/main.py"}))
}

func TestWalkFileNestedFunction(t *testing.T) {
	bundle := walk(t, `
def outer():
    def inner():
        step()
    inner()
`)

	assert.True(t, bundle.Calls.Contains(Relationship{"inner", RelCalls, "step"}))
	assert.True(t, bundle.Calls.Contains(Relationship{"outer", RelCalls, "inner"}))
}

func TestWalkFileSyntaxError(t *testing.T) {
	_, err := WalkFile("app/broken.py", []byte("def broken(:\n"))
	require.Error(t, err)

	var atlasErr *atlaserr.Error
	require.True(t, errors.As(err, &atlasErr))
	assert.Equal(t, atlaserr.CategoryParse, atlasErr.Category)
	assert.Equal(t, "app/broken.py", atlasErr.Path)
}

func TestWalkFileDeterministic(t *testing.T) {
	source := `
from flask import Flask, request

app = Flask(__name__)

def greet(name):
    reply = {"message": name}
    return reply
`
	first := walk(t, source)
	second := walk(t, source)

	assert.Equal(t, first.Entities.Items(), second.Entities.Items())
	assert.Equal(t, first.Relationships.Items(), second.Relationships.Items())
	assert.Equal(t, first.Calls.Items(), second.Calls.Items())
	assert.Equal(t, first.DataFlows.Items(), second.DataFlows.Items())
	assert.Equal(t, first.Endpoints.Items(), second.Endpoints.Items())
}

func TestWalkFileDuplicatesCollapse(t *testing.T) {
	bundle := walk(t, `
def loop():
    helper()
    helper()
    helper()
`)

	count := 0
	for _, call := range bundle.Calls.Items() {
		if call.Target == "helper" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestWalkFileGreetingService(t *testing.T) {
	bundle := walk(t, `
from flask import Flask, request
import requests

app = Flask(__name__)

@app.route('/greet', methods=['GET'])
def get_greeting():
    name = request.args.get('name', 'world')
    requests.get('http://audit/log')
    return {'message': name}
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindWebApp, "app", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindFunction, "get_greeting", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindAPIEndpoint, "/greet", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindHTTPMethod, "GET", "/greet"}))

	assert.True(t, bundle.Endpoints.Contains(Relationship{"get_greeting", RelExposes, "/greet"}))
	assert.True(t, bundle.Endpoints.Contains(Relationship{"/greet", RelSupports, "GET"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"get_greeting", RelUsesInput, "request.args.get"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"get_greeting", RelMakesRequest, "get"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"get_greeting", RelReturnsFields, "['message']"}))
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main.py", true},
		{"stubs.pyi", true},
		{"gui.pyw", true},
		{"main.go", false},
		{"notes.txt", false},
		{"py", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSourceFile(tt.path), tt.path)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "app/main.py", NormalizePath("./app/main.py"))
	assert.Equal(t, "main.py", NormalizePath("main.py"))
}
