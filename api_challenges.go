package skillsprint

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

const (
	PathChallenges      = "/api/challenges"
	PathChallengeCreate = "/api/challenges/create"
)

// Challenge is a coding problem as listed by the backend. Older payloads
// carry id, newer ones challengeId.
type Challenge struct {
	ChallengeID ID     `json:"challengeId,omitempty"`
	LegacyID    ID     `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty,omitempty"`
	Solved      bool   `json:"solved,omitempty"`
}

// ID prefers challengeId over id
func (c Challenge) ID() ID {
	if c.ChallengeID != "" {
		return c.ChallengeID
	}
	return c.LegacyID
}

// Level returns the difficulty, MEDIUM when the backend left it out
func (c Challenge) Level() string {
	if c.Difficulty == "" {
		return DifficultyMedium
	}
	return c.Difficulty
}

// ChallengeRequest is the body for create and update
type ChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// SolutionRequest is the body of a submission
type SolutionRequest struct {
	SolutionText string `json:"solutionText"`
}

// NewChallengeRequest normalizes difficulty casing and defaults it to MEDIUM
func NewChallengeRequest(title, description, difficulty string) ChallengeRequest {
	difficulty = strings.ToUpper(strings.TrimSpace(difficulty))
	if difficulty == "" {
		difficulty = DifficultyMedium
	}
	return ChallengeRequest{
		Title:       strings.TrimSpace(title),
		Description: description,
		Difficulty:  difficulty,
	}
}

func (c *Client) ListChallenges(ctx context.Context) ([]Challenge, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, PathChallenges, &raw); err != nil {
		return nil, err
	}
	return decodeList[Challenge](raw, "challenges", "content", "data")
}

// GetChallenge finds a challenge in the listing, the backend has no single
// challenge endpoint
func (c *Client) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	challenges, err := c.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	return FindChallenge(challenges, id)
}

// FindChallenge matches on challengeId first, then id
func FindChallenge(challenges []Challenge, id string) (*Challenge, error) {
	for i := range challenges {
		if challenges[i].ID().String() == id {
			found := challenges[i]
			return &found, nil
		}
	}
	return nil, ErrChallengeNotFound
}

// SplitSolved partitions challenges keeping the listing order
func SplitSolved(challenges []Challenge) (unsolved, solved []Challenge) {
	for _, ch := range challenges {
		if ch.Solved {
			solved = append(solved, ch)
		} else {
			unsolved = append(unsolved, ch)
		}
	}
	return unsolved, solved
}

func (c *Client) CreateChallenge(ctx context.Context, req ChallengeRequest) error {
	if err := req.Validate(); err != nil {
		return invalidPayload(err)
	}
	return c.Post(ctx, PathChallengeCreate, req, nil)
}

func (c *Client) UpdateChallenge(ctx context.Context, id string, req ChallengeRequest) error {
	if err := req.Validate(); err != nil {
		return invalidPayload(err)
	}
	return c.Put(ctx, "/api/challenges/update/"+url.PathEscape(id), req, nil)
}

func (c *Client) DeleteChallenge(ctx context.Context, id string) error {
	return c.Delete(ctx, "/api/challenges/delete/"+url.PathEscape(id))
}

func (c *Client) SubmitSolution(ctx context.Context, id string, req SolutionRequest) error {
	if err := req.Validate(); err != nil {
		return invalidPayload(err)
	}
	return c.Post(ctx, "/api/challenges/"+url.PathEscape(id)+"/submit", req, nil)
}
