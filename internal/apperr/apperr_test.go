package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs(t *testing.T) {
	validation := Validation("Please provide a password.")
	wrapped := fmt.Errorf("login: %w", validation)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Same(t, validation, got)
	assert.Equal(t, http.StatusBadRequest, got.Status)

	plain := errors.New("disk on fire")
	internal := As(plain)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.ErrorIs(t, internal, plain)

	assert.Nil(t, As(nil))
}

func TestBody_HidesCause(t *testing.T) {
	body := Internal(errors.New("sql: database is locked")).Body()

	assert.Equal(t, TitleInternal, body.Title)
	assert.Equal(t, TitleInternal, body.Message)
	assert.NotContains(t, body.Errors, "sql: database is locked")
}

func TestBody_LoginFailed(t *testing.T) {
	body := Authentication(TitleLoginFailed, "The provided credentials were invalid.").Body()

	assert.Equal(t, Body{
		Title:   "Login failed",
		Message: "Login failed",
		Errors:  []string{"The provided credentials were invalid."},
	}, body)
}

func TestBody_NilMessagesSerializeAsEmptyList(t *testing.T) {
	body := Authentication(TitleUnauthorized).Body()
	assert.NotNil(t, body.Errors)
	assert.Empty(t, body.Errors)
}
