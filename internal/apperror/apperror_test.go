package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		MissingID:         http.StatusBadRequest,
		InvalidIDFormat:   http.StatusBadRequest,
		MalformedBody:     http.StatusBadRequest,
		SchemaViolation:   http.StatusBadRequest,
		InvalidLimit:      http.StatusBadRequest,
		InvalidPageCursor: http.StatusBadRequest,
		NotFound:          http.StatusNotFound,
		Unclassified:      http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := New(NotFound, "Item with ID x not found")
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, NotFound))
	assert.Equal(t, Unclassified, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, Unclassified))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bad json")
	err := Wrap(MalformedBody, "Invalid JSON in request body", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "malformed_body")
}
