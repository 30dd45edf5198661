package types

import "time"

// Outcome is the terminal state of one candidate's trip through the
// extraction step.
type Outcome string

const (
	// OutcomeAccepted: flattened, written, re-validated, kept on disk.
	OutcomeAccepted Outcome = "accepted"

	// OutcomeRejected: dropped at classification (Reason carries the tag).
	OutcomeRejected Outcome = "rejected"

	// OutcomeValidationFailed: classified synthesizable but the flattened
	// artifact failed re-validation; the artifact was deleted.
	OutcomeValidationFailed Outcome = "validation_failed"
)

// ExtractionRecord captures one candidate's terminal state for the run
// database. Rejections are data, not errors, so every candidate produces
// exactly one record.
type ExtractionRecord struct {
	Repo       string        `json:"repo"`
	Path       string        `json:"path"`
	Kind       SourceKind    `json:"kind"`
	Outcome    Outcome       `json:"outcome"`
	Reason     Reason        `json:"reason,omitempty"`
	Module     string        `json:"module,omitempty"`
	OutputFile string        `json:"output_file,omitempty"`
	ModuleID   ModuleID      `json:"module_id,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Accepted reports whether the candidate ended in the corpus.
func (r ExtractionRecord) Accepted() bool {
	return r.Outcome == OutcomeAccepted
}

// RepoTally is the per-repository scan result row.
type RepoTally struct {
	Repo      string    `json:"repo"`
	Tally     Tally     `json:"tally"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ModuleRecord describes one distinct accepted module in the corpus, keyed
// by content hash. Accepting identical content again (the same module
// harvested from a fork, say) folds into the first record.
type ModuleRecord struct {
	ID   ModuleID   `json:"id"`
	Name string     `json:"name"`
	File string     `json:"file"`
	Kind SourceKind `json:"kind"`
	Repo string     `json:"repo"`
	Size int64      `json:"size"`
}
