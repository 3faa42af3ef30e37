// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/akamensky/base58"
)

// idByteLength gives 16 bytes of entropy per identifier, which base58
// encodes to a 22 character string.
const idByteLength = 16

// NewID returns a URL-safe random identifier.
func NewID() (string, error) {
	buf := make([]byte, idByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating random id: %w", err)
	}
	return base58.Encode(buf), nil
}
