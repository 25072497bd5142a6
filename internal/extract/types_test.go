package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntitySetDeduplicates(t *testing.T) {
	set := NewEntitySet()
	set.Add(Entity{KindFunction, "greet", "a.py"})
	set.Add(Entity{KindFunction, "greet", "a.py"})
	set.Add(Entity{KindFunction, "greet", "b.py"})

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Entity{
		{KindFunction, "greet", "a.py"},
		{KindFunction, "greet", "b.py"},
	}, set.Items())
}

func TestRelationshipSetInsertionOrder(t *testing.T) {
	set := NewRelationshipSet()
	set.Add(Relationship{"a", RelCalls, "b"})
	set.Add(Relationship{"a", RelCalls, "c"})
	set.Add(Relationship{"a", RelCalls, "b"})

	assert.Equal(t, []Relationship{
		{"a", RelCalls, "b"},
		{"a", RelCalls, "c"},
	}, set.Items())
}

func TestBundleMerge(t *testing.T) {
	left := NewBundle()
	left.Entities.Add(Entity{KindLibrary, "os", "a.py"})
	left.Relationships.Add(Relationship{"a.py", RelImports, "os"})

	right := NewBundle()
	right.Entities.Add(Entity{KindLibrary, "os", "b.py"})
	right.Relationships.Add(Relationship{"b.py", RelImports, "os"})
	right.Calls.Add(Relationship{"fn", RelCalls, "helper"})

	left.Merge(right)

	assert.Equal(t, 2, left.Entities.Len())
	assert.Equal(t, 2, left.Relationships.Len())
	assert.Equal(t, 1, left.Calls.Len())

	// Merging again is a no-op under set semantics
	left.Merge(right)
	assert.Equal(t, 2, left.Entities.Len())
}
