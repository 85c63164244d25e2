package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: NotFound, Op: "list", Path: "/missing"}
	assert.Equal(t, "list: not found: /missing", err.Error())

	wrapped := &Error{Kind: NotFound, Op: "list", Path: "/missing", Err: fs.ErrNotExist}
	assert.Equal(t, "list: not found: /missing: file does not exist", wrapped.Error())

	plain := New(DecodeFailure, "invalid response format")
	assert.Equal(t, "invalid response format", plain.Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, NotFound, "list", "/x"))

	err := Wrap(fs.ErrPermission, NotFound, "list", "/x")
	assert.True(t, Is(err, fs.ErrPermission))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))

	outer := fmt.Errorf("refresh: %w", err)
	assert.Equal(t, NotFound, KindOf(outer))
}

func TestTransportKinds(t *testing.T) {
	rate := New(RateLimited, "rate limited")
	assert.True(t, IsRateLimited(rate))
	assert.True(t, IsTransport(rate))

	transport := New(Transport, "http error: 500")
	assert.True(t, IsTransport(transport))
	assert.False(t, IsRateLimited(transport))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("boom")))
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "operation failure", OperationFailure.String())
}
