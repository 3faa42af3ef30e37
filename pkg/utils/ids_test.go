// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("generates non-empty ids", func(t *testing.T) {
		id, err := NewID()
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("generates unique ids", func(t *testing.T) {
		seen := make(map[string]bool)
		for range 100 {
			id, err := NewID()
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %q", id)
			seen[id] = true
		}
	})
}

func TestPtr(t *testing.T) {
	s := Ptr("hello")
	require.NotNil(t, s)
	assert.Equal(t, "hello", *s)

	assert.Equal(t, "", Deref[string](nil))
	assert.Equal(t, 7, Deref(Ptr(7)))
}
