package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteDecoration(t *testing.T) {
	bundle := walk(t, `
@app.route('/greet', methods=['GET', 'POST'])
def greet():
    return {'message': 'hi'}
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindAPIEndpoint, "/greet", "app/main.py"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindHTTPMethod, "GET", "/greet"}))
	assert.True(t, bundle.Entities.Contains(Entity{KindHTTPMethod, "POST", "/greet"}))

	assert.True(t, bundle.Endpoints.Contains(Relationship{"greet", RelExposes, "/greet"}))
	assert.True(t, bundle.Endpoints.Contains(Relationship{"/greet", RelSupports, "GET"}))
	assert.True(t, bundle.Endpoints.Contains(Relationship{"/greet", RelSupports, "POST"}))

	// Exactly one EXPOSES and one SUPPORTS per verb
	assert.Equal(t, 3, bundle.Endpoints.Len())
}

func TestRouteDecorationWithoutMethods(t *testing.T) {
	bundle := walk(t, `
@app.route('/health')
def health():
    return {'status': 'ok'}
`)

	assert.True(t, bundle.Endpoints.Contains(Relationship{"health", RelExposes, "/health"}))
	assert.Equal(t, 1, bundle.Endpoints.Len())

	for _, e := range bundle.Entities.Items() {
		assert.NotEqual(t, KindHTTPMethod, e.Kind)
	}
}

func TestRouteDecorationAnyReceiver(t *testing.T) {
	// Which object exposes .route is deliberately unresolved
	bundle := walk(t, `
@blueprint.route('/items')
def items():
    return {'items': []}
`)

	assert.True(t, bundle.Endpoints.Contains(Relationship{"items", RelExposes, "/items"}))
}

func TestBareDecoration(t *testing.T) {
	bundle := walk(t, `
@cached
def lookup():
    return None
`)

	assert.True(t, bundle.Relationships.Contains(Relationship{"lookup", RelDecoratedBy, "cached"}))
}

func TestAttributeDecoration(t *testing.T) {
	bundle := walk(t, `
@functools.cache
def lookup():
    return None
`)

	assert.True(t, bundle.Relationships.Contains(Relationship{"lookup", RelDecoratedBy, "functools.cache"}))
}

func TestUnrecognizedCallDecoration(t *testing.T) {
	// Call-shaped decorations other than .route(...) are ignored
	bundle := walk(t, `
@lru_cache(maxsize=16)
def lookup():
    return None
`)

	assert.Equal(t, 0, bundle.Endpoints.Len())
	for _, rel := range bundle.Relationships.Items() {
		assert.NotEqual(t, RelDecoratedBy, rel.Relation)
	}
}

func TestRouteDecorationNonStringPath(t *testing.T) {
	bundle := walk(t, `
@app.route(PATH)
def dynamic():
    return None
`)

	assert.Equal(t, 0, bundle.Endpoints.Len())
}

func TestDecoratedMethod(t *testing.T) {
	bundle := walk(t, `
class Api:
    @staticmethod
    def version():
        return "1.0"
`)

	assert.True(t, bundle.Entities.Contains(Entity{KindMethod, "version", "Api"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"Api", RelDefines, "version"}))
	assert.True(t, bundle.Relationships.Contains(Relationship{"version", RelDecoratedBy, "staticmethod"}))
}
