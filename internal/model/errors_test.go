package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: refused")
	err := NewError(KindPersistenceUnavailable, "could not save briefing", cause)
	wrapped := fmt.Errorf("sink: %w", err)

	assert.Equal(t, KindPersistenceUnavailable, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, ErrorKind(""), KindOf(cause))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewError(KindGenerationMalformed, "briefing was malformed", nil)
	assert.Equal(t, "generation_malformed: briefing was malformed", err.Error())

	err = NewError(KindGenerationUnavailable, "llm unavailable", errors.New("timeout"))
	assert.Equal(t, "generation_unavailable: llm unavailable: timeout", err.Error())
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", NewError(KindValidation, "company_domain is required", errors.New("secret detail")))
	assert.Equal(t, "company_domain is required", PublicMessage(err))
	assert.Equal(t, "internal error", PublicMessage(errors.New("boom")))
}
