// Package batch carries per-item outcomes of bulk report ingestion.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of indexing one report of a bulk request.
// Position is the item's index in the request, so callers can match failures
// to input lines even when the report never got an ID.
type Result struct {
	position int
	id       string
	err      error
}

// NewOK creates a successful batch result.
func NewOK(position int, id string) Result { return Result{position: position, id: id} }

// NewError creates a failed batch result.
func NewError(position int, id string, err error) Result {
	return Result{position: position, id: id, err: err}
}

// Position returns the item's index in the request.
func (r Result) Position() int { return r.position }

// ID returns the report identifier, empty when the item failed before one was assigned.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus {
	if r.err != nil {
		return StatusError
	}
	return StatusOK
}

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes of a batch.
type Summary struct {
	OK     int
	Failed int
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.err != nil {
			s.Failed++
		} else {
			s.OK++
		}
	}
	return s
}
