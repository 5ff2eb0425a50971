package simulation

import "fmt"

// InvariantError reports a broken internal consistency rule. Results after
// the reported day cannot be trusted, so the run aborts and keeps only the
// rows recorded before that day.
type InvariantError struct {
	Day       int
	Province  string
	Invariant string
}

func (e *InvariantError) Error() string {
	if e.Province == "" {
		return fmt.Sprintf("invariant violated on day %d: %s", e.Day, e.Invariant)
	}
	return fmt.Sprintf("invariant violated on day %d in province %s: %s", e.Day, e.Province, e.Invariant)
}
