package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeValidation, "bad input")

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "validation: bad input", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrorTypeFile, "write failed")

	require.NotNil(t, err)
	assert.Equal(t, "file: write failed: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
	assert.Nil(t, WrapTask(nil, 3))
}

func TestWrapTaskCarriesIndex(t *testing.T) {
	cause := fmt.Errorf("simulation diverged")
	err := WrapTask(cause, 7)

	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeTask, err.Type)
	assert.Equal(t, 7, TaskIndex(err))
	assert.True(t, errors.Is(err, cause))
}

func TestTaskIndexThroughChain(t *testing.T) {
	inner := WrapTask(fmt.Errorf("boom"), 2)
	outer := Wrap(inner, ErrorTypeInternal, "run aborted")

	assert.Equal(t, 2, TaskIndex(outer))
}

func TestTaskIndexAbsent(t *testing.T) {
	assert.Equal(t, -1, TaskIndex(fmt.Errorf("plain")))
	assert.Equal(t, -1, TaskIndex(New(ErrorTypeData, "no index")))
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeTimeout, "deadline exceeded")

	assert.True(t, IsType(err, ErrorTypeTimeout))
	assert.False(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeTimeout))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeData, "conflict").WithDetail("column", "reward")

	assert.Equal(t, "reward", err.Detail("column"))
	assert.Nil(t, err.Detail("missing"))
}
