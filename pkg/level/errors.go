package level

import (
	"errors"
	"fmt"
)

// ErrChunkNotPresent reports a chunk coordinate unknown to the store.
// Callers may create the chunk or skip it.
var ErrChunkNotPresent = errors.New("chunk not present")

// ErrChunkMalformed reports corrupt or unparseable on-disk chunk data.
// It matches ErrChunkNotPresent under errors.Is: a malformed chunk is
// removed from the store and is no longer addressable.
var ErrChunkMalformed = fmt.Errorf("chunk malformed: %w", ErrChunkNotPresent)
