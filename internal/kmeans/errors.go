package kmeans

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every argument validation failure.
var ErrInvalidArgument = errors.New("kmeans: invalid argument")

// ArgumentError reports which argument of a run was rejected.
type ArgumentError struct {
	Arg   string
	Value int64
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("kmeans: invalid %s: %d", e.Arg, e.Value)
}

// Is makes errors.Is(err, ErrInvalidArgument) hold.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
