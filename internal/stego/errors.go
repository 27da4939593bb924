package stego

import (
	"errors"
	"fmt"

	"github.com/mattetti/avistego/internal/riff"
)

var (
	// ErrMarkerNotFound means the input has no movi list and is not an AVI
	// laid out the way this tool expects.
	ErrMarkerNotFound = riff.ErrMarkerNotFound
	// ErrCapacityExceeded means the stream chunks ran out before the message
	// and its terminator were written.
	ErrCapacityExceeded = errors.New("carrier capacity exceeded")
	// ErrTerminatorNotFound means the stream chunks ran out before the
	// terminator showed up. The text recovered so far may be incomplete.
	ErrTerminatorNotFound = errors.New("message terminator not found")
)

// CapacityError reports how many carrier bytes an encode needed and how many
// the stream chunks offered. It matches ErrCapacityExceeded.
type CapacityError struct {
	Required  int // Usable bytes needed, one per message bit
	Available int // Usable bytes across all stream chunks
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: message needs %d bytes, stream chunks hold %d", ErrCapacityExceeded, e.Required, e.Available)
}

// Is lets errors.Is match ErrCapacityExceeded
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
