// Package footstep defines the robot sides and the footstep and timing values produced by the
// recovery planner.
package footstep

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Side is one of the two legs of a biped.
type Side int

// The two sides.
const (
	Left Side = iota
	Right
)

// Sides lists both sides in index order.
var Sides = [2]Side{Left, Right}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// NegateIfRight returns -value for the right side and value for the left side. Lateral offsets
// are expressed for the left side and mirrored this way.
func (s Side) NegateIfRight(value float64) float64 {
	if s == Right {
		return -value
	}
	return value
}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// SideFromString parses "left" or "right", ignoring case.
func SideFromString(str string) (Side, error) {
	switch strings.ToLower(str) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, errors.Errorf("unknown side %q", str)
}

// MarshalJSON writes the side as its lowercase name.
func (s Side) MarshalJSON() ([]byte, error) {
	if s != Left && s != Right {
		return nil, errors.Errorf("cannot marshal side %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON reads a side from its name.
func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.Wrap(err, "side must be a string")
	}
	parsed, err := SideFromString(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SideDependent holds one value per side.
type SideDependent[T any] [2]T

// NewSideDependent returns a SideDependent holding left and right.
func NewSideDependent[T any](left, right T) SideDependent[T] {
	return SideDependent[T]{left, right}
}

// Get returns the value for side.
func (sd *SideDependent[T]) Get(side Side) T {
	return sd[side]
}

// Set stores the value for side.
func (sd *SideDependent[T]) Set(side Side, value T) {
	sd[side] = value
}
