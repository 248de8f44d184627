package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(Validationf("bad input")))
	assert.Equal(t, CodeSessionNotFound, CodeOf(ErrSessionNotFound))
	assert.Equal(t, CodeSessionNotFound, CodeOf(fmt.Errorf("wrapped: %w", ErrSessionNotFound)))
	assert.Equal(t, CodeSyncFailed, CodeOf(ErrSyncFailed))
	assert.Equal(t, CodeDatabase, CodeOf(Database("get session", errors.New("connection refused"))))
	assert.Equal(t, CodeUnauthorized, CodeOf(ErrUnauthorized))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestDatabaseNilPassthrough(t *testing.T) {
	assert.NoError(t, Database("noop", nil))
}

func TestDatabaseUnwrap(t *testing.T) {
	cause := errors.New("driver crash")
	err := Database("update session", cause)
	assert.ErrorIs(t, err, cause)
}
