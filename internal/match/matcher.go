// Package match decides which enrolled identity, if any, a face embedding
// belongs to. Everything here is a pure function of its inputs.
package match

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

// Tolerance is the Euclidean distance below which a candidate is accepted.
// It was chosen for the dlib ResNet face model and is not configurable.
const Tolerance = 0.45

// Candidate is one enrolled identity offered to the matcher
type Candidate struct {
	ID        int64
	Label     string
	Embedding []float64
}

// Status is the kind of outcome a match produced
type Status int

const (
	// StatusEmpty means there was nothing to compare against
	StatusEmpty Status = iota
	// StatusNoMatch means the closest candidate was not close enough
	StatusNoMatch
	// StatusMatched means the closest candidate is within Tolerance
	StatusMatched
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusNoMatch:
		return "no_match"
	case StatusMatched:
		return "matched"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of one Match call.
// Index and Candidate are only meaningful when Status is StatusMatched;
// Distance is set for both StatusMatched and StatusNoMatch.
type Outcome struct {
	Status    Status
	Index     int
	Candidate Candidate
	Distance  float64
}

// Matched reports whether the outcome accepted a candidate
func (o Outcome) Matched() bool {
	return o.Status == StatusMatched
}

// Match finds the candidate closest to query by Euclidean distance and
// accepts it when the distance is strictly below Tolerance. Exact ties keep
// the first candidate in input order.
//
// Every candidate embedding must have the same length as query; a mismatch
// panics. Use ValidateDimensions beforehand on data read from storage.
func Match(query []float64, candidates []Candidate) Outcome {
	if len(candidates) == 0 {
		return Outcome{Status: StatusEmpty, Index: -1}
	}

	best := 0
	bestDistance := floats.Distance(query, candidates[0].Embedding, 2)
	for i := 1; i < len(candidates); i++ {
		d := floats.Distance(query, candidates[i].Embedding, 2)
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}

	if bestDistance < Tolerance {
		return Outcome{
			Status:    StatusMatched,
			Index:     best,
			Candidate: candidates[best],
			Distance:  bestDistance,
		}
	}

	return Outcome{Status: StatusNoMatch, Index: -1, Distance: bestDistance}
}

// ValidateDimensions checks that every candidate embedding has the query's
// length. A mismatch means stored data was produced by a different model.
func ValidateDimensions(query []float64, candidates []Candidate) error {
	for _, c := range candidates {
		if len(c.Embedding) != len(query) {
			return domain.ErrDimensionalityMismatch.WithError(
				fmt.Errorf("candidate %d (%s) has %d dimensions, query has %d",
					c.ID, c.Label, len(c.Embedding), len(query)),
			)
		}
	}
	return nil
}
