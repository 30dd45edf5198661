package types

import "fmt"

// Tally counts extraction outcomes for one scanned tree: Extracted is the
// number of candidates whose flattened artifact survived re-validation,
// Total the number of candidates enumerated. Extracted <= Total always.
type Tally struct {
	Extracted int `json:"extracted"`
	Total     int `json:"total"`
}

// Merge adds another tally into this one. Used to sum per-kind tallies into
// a repository tally and repository tallies into the run summary.
func (t *Tally) Merge(other Tally) {
	t.Extracted += other.Extracted
	t.Total += other.Total
}

// String renders the numerator/denominator form used in run summaries.
func (t Tally) String() string {
	return fmt.Sprintf("%d/%d", t.Extracted, t.Total)
}
