package sources

import "aibc/types"

// Result is the outcome of a single source fetch. A failed fetch and an
// empty listing both yield zero signals downstream, but Err keeps them
// distinguishable in cycle logs.
type Result struct {
	Source  types.Source
	Name    string
	Signals []types.Signal
	Err     error
}

// Failed reports whether the fetch itself failed (as opposed to returning
// zero items)
func (r Result) Failed() bool {
	return r.Err != nil
}
