package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "entry not found")

	assert.Equal(t, "[NOT_FOUND] entry not found", err.Error())
	assert.Equal(t, errors.ErrNotFound, err.Code)
	assert.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := errors.Wrapf(cause, errors.ErrIOFailure, "failed to write %s", "/tmp/x")

	assert.Equal(t, "[IO_FAILURE] failed to write /tmp/x: disk full", err.Error())
	assert.Equal(t, cause, err.Unwrap())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrIOFailure, "nothing"))
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrAmbiguous, "mixed existence")

	assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguous))
	assert.False(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.False(t, errors.IsErrorCode(fmt.Errorf("plain"), errors.ErrAmbiguous))
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	inner := errors.New(errors.ErrCollision, "destination exists")
	outer := fmt.Errorf("pop failed: %w", inner)

	assert.True(t, errors.IsErrorCode(outer, errors.ErrCollision))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrInvalidFormat, errors.GetErrorCode(errors.New(errors.ErrInvalidFormat, "bad json")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrAmbiguous, "mixed existence").
		WithDetail("existing", []string{"a.txt"}).
		WithDetail("missing", []string{"b.txt"})

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, []string{"a.txt"}, details["existing"])
	assert.Equal(t, []string{"b.txt"}, details["missing"])
}
