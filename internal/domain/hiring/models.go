package hiring

import "time"

const (
	JobOpen   = "open"
	JobClosed = "closed"
)

// Candidate pipeline stages, in order. Rejected sits outside the ladder.
const (
	StageApplied   = "applied"
	StageScreening = "screening"
	StageInterview = "interview"
	StageOffer     = "offer"
	StageHired     = "hired"
	StageRejected  = "rejected"
)

var stageOrder = []string{StageApplied, StageScreening, StageInterview, StageOffer, StageHired}

type Job struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Location     string    `json:"location"`
	SalaryRange  string    `json:"salaryRange"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Candidate struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	JobID      string    `json:"jobId"`
	Name       string    `json:"name"`
	Experience string    `json:"experience"`
	Stage      string    `json:"stage"`
	CreatedAt  time.Time `json:"createdAt"`

	// Phone is decrypted on read; only ciphertext and digest are stored.
	Phone       string `json:"phone,omitempty"`
	PhoneDigest string `json:"-"`
}

// NextStage returns the stage after current on the pipeline ladder and
// whether an advance is possible.
func NextStage(current string) (string, bool) {
	for i, stage := range stageOrder {
		if stage == current {
			if i == len(stageOrder)-1 {
				return current, false
			}
			return stageOrder[i+1], true
		}
	}
	// Unknown stage restarts the ladder.
	return stageOrder[1], true
}
