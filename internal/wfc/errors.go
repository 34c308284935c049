package wfc

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationFailed   = errors.New("wfc: generation failed")
	ErrRotationOutOfRange = errors.New("wfc: rotation out of range")
	ErrAlreadyCollapsed   = errors.New("wfc: node already collapsed")
	ErrSideMismatch       = errors.New("wfc: ordered edge count does not match tile side count")
	ErrUnknownTopology    = errors.New("wfc: unknown map shape")
	ErrDuplicateNode      = errors.New("wfc: node already exists at coordinate")
)

// FailureKind identifies why a generation run was aborted.
type FailureKind int

const (
	// FailureNoWeightedChoice means every possible tile on the node had a
	// non-positive probability when the node was collapsed.
	FailureNoWeightedChoice FailureKind = iota
	// FailureContradiction means propagation removed every possible tile.
	FailureContradiction
)

// String returns the string representation of a FailureKind
func (k FailureKind) String() string {
	switch k {
	case FailureNoWeightedChoice:
		return "no_weighted_choice"
	case FailureContradiction:
		return "contradiction"
	default:
		return "unknown"
	}
}

// GenerationError reports an unrecoverable failure attributed to one node.
type GenerationError struct {
	Coordinate Coordinate
	Kind       FailureKind
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case FailureNoWeightedChoice:
		return fmt.Sprintf("wfc: failed to choose a tile for node at %s: all possible tiles have non-positive probability", e.Coordinate)
	case FailureContradiction:
		return fmt.Sprintf("wfc: node at %s has no possible valid tiles", e.Coordinate)
	default:
		return fmt.Sprintf("wfc: generation failed at %s", e.Coordinate)
	}
}

// Unwrap lets callers match any engine failure with errors.Is(err, ErrGenerationFailed).
func (e *GenerationError) Unwrap() error {
	return ErrGenerationFailed
}
