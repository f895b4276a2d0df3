package ingest

// Status classifies the result of ingesting a single document.
type Status int

const (
	// StatusSucceeded means every chunk of the document was written.
	StatusSucceeded Status = iota + 1
	// StatusSkipped means the namespace already held vectors and was left alone.
	StatusSkipped
	// StatusFailed means no chunks were written.
	StatusFailed
	// StatusPartialFailure means some batches were written before a failure.
	StatusPartialFailure
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusPartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Outcome reports the result of ingesting one document.
type Outcome struct {
	// Source is the document's source identity as given by the caller.
	Source string

	// Namespace is the derived namespace the document maps to.
	Namespace string

	// Status classifies the result.
	Status Status

	// ChunksProcessed counts chunks actually written to the store.
	ChunksProcessed int

	// Err holds the failure cause for failed and partial outcomes.
	Err error
}

// Summary aggregates outcomes across an IngestAll run.
type Summary struct {
	Outcomes []Outcome
}

// Succeeded counts fully ingested documents.
func (s *Summary) Succeeded() int { return s.count(StatusSucceeded) }

// Skipped counts documents whose namespace was already populated.
func (s *Summary) Skipped() int { return s.count(StatusSkipped) }

// Failed counts documents that wrote nothing.
func (s *Summary) Failed() int { return s.count(StatusFailed) }

// Partial counts documents that failed mid-run with some chunks written.
func (s *Summary) Partial() int { return s.count(StatusPartialFailure) }

func (s *Summary) count(status Status) int {
	n := 0
	for i := range s.Outcomes {
		if s.Outcomes[i].Status == status {
			n++
		}
	}
	return n
}
