package skillsprint

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// DefaultSubmissionStatus is shown when the backend sends no status
const DefaultSubmissionStatus = "SUBMITTED"

type Submission struct {
	SubmissionID ID     `json:"submissionId,omitempty"`
	LegacyID     ID     `json:"id,omitempty"`
	Status       string `json:"status,omitempty"`
	SolutionText string `json:"solutionText"`
	SubmittedAt  string `json:"submittedAt,omitempty"`
}

// ID prefers submissionId over id
func (s Submission) ID() ID {
	if s.SubmissionID != "" {
		return s.SubmissionID
	}
	return s.LegacyID
}

func (s Submission) State() string {
	if s.Status == "" {
		return DefaultSubmissionStatus
	}
	return s.Status
}

var submittedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// SubmittedTime parses submittedAt, which the backend sends with or
// without a zone
func (s Submission) SubmittedTime() (time.Time, bool) {
	for _, layout := range submittedAtLayouts {
		if t, err := time.Parse(layout, s.SubmittedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (c *Client) ListSubmissions(ctx context.Context, challengeID string) ([]Submission, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/api/challenges/"+url.PathEscape(challengeID)+"/submissions", &raw); err != nil {
		return nil, err
	}
	return decodeList[Submission](raw, "submissions", "content", "data")
}

func (c *Client) DeleteSubmission(ctx context.Context, id string) error {
	return c.Delete(ctx, "/api/submissions/"+url.PathEscape(id))
}
