package consolidation

import "fmt"

const (
	InvariantConservation = "conservation"
	InvariantNonEmptyRefs = "non-empty refs"
	InvariantUniqueIDs    = "unique ids"
	InvariantBucketAssign = "single bucket"
	InvariantIndexCover   = "index cover"
	InvariantSolidSteps   = "canonical solid steps"
)

// InvariantViolation reports a broken guarantee of the consolidation pass.
// Once returned, no part of the result should be trusted.
type InvariantViolation struct {
	Invariant string
	Expected  int
	Actual    int
	Entry     string
}

func (e *InvariantViolation) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("invariant %q violated at %s: expected %d, got %d", e.Invariant, e.Entry, e.Expected, e.Actual)
	}
	return fmt.Sprintf("invariant %q violated: expected %d, got %d", e.Invariant, e.Expected, e.Actual)
}
