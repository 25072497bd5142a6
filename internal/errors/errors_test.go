package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("unexpected token")
	err := ParseError(cause, "app/broken.py")

	assert.Equal(t, "parse failure: app/broken.py: unexpected token", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestIsMatchesByCategory(t *testing.T) {
	err := IOError(fmt.Errorf("permission denied"), "app/locked.py")

	assert.True(t, stderrors.Is(err, New(CategoryIO, "")))
	assert.False(t, stderrors.Is(err, New(CategoryParse, "")))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryParse, GetCategory(ParseError(fmt.Errorf("x"), "f.py")))
	assert.Equal(t, CategoryUpsert, GetCategory(UpsertError(fmt.Errorf("x"), "greet")))
	assert.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("plain")))
}

func TestIsSkippable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"parse failure skips the file", ParseError(fmt.Errorf("x"), "f.py"), true},
		{"read failure skips the file", IOError(fmt.Errorf("x"), "f.py"), true},
		{"constraint failure is not a file skip", ConstraintError(fmt.Errorf("x"), "Class"), false},
		{"upsert failure is not a file skip", UpsertError(fmt.Errorf("x"), "greet"), false},
		{"config failure aborts", ConfigErrorf("missing %s", "NEO4J_URI"), false},
		{"uncategorized aborts", fmt.Errorf("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSkippable(tt.err))
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CategoryIO, "walk failed"))
}
