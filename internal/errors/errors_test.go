package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := Range("calc year %d not supported", 2100)
	assert.Equal(t, "[RANGE_ERROR] calc year 2100 not supported", err.Error())

	wrapped := Parsing("bad cell", fmt.Errorf("strconv: invalid syntax"))
	assert.Equal(t, "[PARSING_ERROR] bad cell: strconv: invalid syntax", wrapped.Error())
}

func TestIsTypeSeesThroughWrapping(t *testing.T) {
	lookup := Lookup("base table", "Male EE", 130)
	outer := fmt.Errorf("computing 430 table: %w", lookup)

	assert.True(t, IsType(outer, TypeLookup))
	assert.False(t, IsType(outer, TypeRange))
	assert.Equal(t, TypeLookup, TypeOf(outer))
}

func TestIsTypeFollowsDomainCauses(t *testing.T) {
	inner := Lookup("improvement table", 2030, 65)
	outer := Wrap(TypeInternal, "derivation failed", inner)

	assert.True(t, IsType(outer, TypeInternal))
	assert.True(t, IsType(outer, TypeLookup))
	assert.Equal(t, TypeInternal, TypeOf(outer))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, TypeInternal, TypeOf(fmt.Errorf("boom")))
	assert.False(t, IsType(nil, TypeLookup))
}

func TestWithContext(t *testing.T) {
	err := Lookup("blending table", "Male", 15).WithContext("file", "Blending.csv")
	require.NotNil(t, err.Context)
	assert.Equal(t, "Blending.csv", err.Context["file"])
	assert.Contains(t, err.Error(), "blending table: no entry for [Male 15]")
}

func TestStdlibIsReachesCause(t *testing.T) {
	err := Parsing("read Base.csv", io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, stderrors.Is(fmt.Errorf("load: %w", err), io.ErrUnexpectedEOF))
	assert.False(t, stderrors.Is(Input("bad year"), io.ErrUnexpectedEOF))
}
