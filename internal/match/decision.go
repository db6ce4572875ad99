package match

// Kind identifies what the attendance flow should do with a face
type Kind int

const (
	// KindNewVisitor means neither pool matched
	KindNewVisitor Kind = iota
	// KindEmployee means the employee pool matched
	KindEmployee
	// KindVisitor means only the visitor pool matched
	KindVisitor
)

func (k Kind) String() string {
	switch k {
	case KindEmployee:
		return "employee"
	case KindVisitor:
		return "visitor"
	default:
		return "new_visitor"
	}
}

// Decision is the outcome of the attendance policy. Employee and Visitor
// keep the per-pool match outcomes for logging.
type Decision struct {
	Kind      Kind
	Candidate Candidate
	Distance  float64
	Employee  Outcome
	Visitor   Outcome
}

// Decide runs the query against the employee pool and, only if that does
// not match, against the visitor pool. The pools are never merged: an
// employee within Tolerance wins even when some visitor is closer.
func Decide(query []float64, employees, visitors []Candidate) Decision {
	emp := Match(query, employees)
	if emp.Matched() {
		return Decision{
			Kind:      KindEmployee,
			Candidate: emp.Candidate,
			Distance:  emp.Distance,
			Employee:  emp,
		}
	}

	vis := Match(query, visitors)
	if vis.Matched() {
		return Decision{
			Kind:      KindVisitor,
			Candidate: vis.Candidate,
			Distance:  vis.Distance,
			Employee:  emp,
			Visitor:   vis,
		}
	}

	return Decision{
		Kind:     KindNewVisitor,
		Employee: emp,
		Visitor:  vis,
	}
}
