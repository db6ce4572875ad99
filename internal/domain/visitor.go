package domain

import (
	"strings"
	"time"
)

// VisitorStatus is the approval state of a visitor
type VisitorStatus string

const (
	VisitorPending  VisitorStatus = "Pending"
	VisitorApproved VisitorStatus = "Approved"
	VisitorRejected VisitorStatus = "Rejected"
)

// Visitor is a non-employee seen at the front desk. Walk-ups detected by
// the attendance flow have no name and no embedding until someone creates
// the visitor explicitly.
type Visitor struct {
	ID           int64         `json:"id"`
	Name         *string       `json:"name"`
	PersonToMeet *string       `json:"person_to_meet"`
	Status       VisitorStatus `json:"status"`
	ImagePath    string        `json:"image_path"`
	Embedding    []float64     `json:"-"`
	CreatedAt    time.Time     `json:"timestamp"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// HasEmbedding reports whether the visitor can take part in matching
func (v *Visitor) HasEmbedding() bool {
	return len(v.Embedding) > 0
}

// VisitorUpdate carries a partial update; nil fields are left untouched.
type VisitorUpdate struct {
	Name         *string
	PersonToMeet *string
	Status       *VisitorStatus
}

// IsEmpty reports whether the update changes nothing
func (u VisitorUpdate) IsEmpty() bool {
	return u.Name == nil && u.PersonToMeet == nil && u.Status == nil
}

// ParseDecision maps an approval decision to the resulting status.
// Matching is case-insensitive but exact: surrounding whitespace or anything
// other than approve/reject fails.
func ParseDecision(decision string) (VisitorStatus, error) {
	switch strings.ToLower(decision) {
	case "approve":
		return VisitorApproved, nil
	case "reject":
		return VisitorRejected, nil
	default:
		return "", ErrInvalidDecision
	}
}

// ParseVisitorStatus accepts a status name in any letter case
func ParseVisitorStatus(status string) (VisitorStatus, error) {
	for _, s := range []VisitorStatus{VisitorPending, VisitorApproved, VisitorRejected} {
		if strings.EqualFold(strings.TrimSpace(status), string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}
