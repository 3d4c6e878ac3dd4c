package hiring

import "errors"

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobClosed         = errors.New("job is no longer accepting applications")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrFinalStage        = errors.New("candidate is already at the final stage")
)
