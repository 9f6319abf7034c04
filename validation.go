package skillsprint

import (
	"errors"
	"strings"

	"github.com/asaskevich/govalidator"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Difficulty levels accepted by the backend
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// MessageEmptySolution is shown when a blank solution is submitted
const MessageEmptySolution = "Solution cannot be empty!"

var roleRule = validation.In(string(RoleUser), string(RoleAdmin)).
	Error("must be USER or ADMIN")

// emailRule checks the format only, the backend owns deliverability
var emailRule = validation.NewStringRule(govalidator.IsEmail, "must be a valid email address")

var difficultyRule = validation.In(DifficultyEasy, DifficultyMedium, DifficultyHard).
	Error("must be EASY, MEDIUM or HARD")

func (r LoginRequest) Validate() error {
	adminKey := []validation.Rule{}
	if r.Role == string(RoleAdmin) {
		adminKey = append(adminKey, validation.Required.Error("admin key is required for ADMIN login"))
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, validation.Required, roleRule),
		validation.Field(&r.AdminKey, adminKey...),
	)
}

func (r RegisterRequest) Validate() error {
	adminKey := []validation.Rule{}
	if r.Role == string(RoleAdmin) {
		adminKey = append(adminKey, validation.Required.Error("admin key is required for ADMIN registration"))
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Email, validation.Required, emailRule),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Role, roleRule),
		validation.Field(&r.AdminKey, adminKey...),
	)
}

func (r ChallengeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Difficulty, validation.Required, difficultyRule),
	)
}

func (r SolutionRequest) Validate() error {
	if strings.TrimSpace(r.SolutionText) == "" {
		return validation.Errors{"solutionText": errors.New(MessageEmptySolution)}
	}
	return nil
}

// invalidPayload wraps a validation failure into ErrInvalidPayload with the
// per field messages as metadata
func invalidPayload(err error) error {
	if err == nil {
		return nil
	}

	richErr := ErrInvalidPayload.Clone()
	richErr.Source = err

	fields := map[string]any{}
	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
	}

	meta := map[string]any{"message": err.Error()}
	if len(fields) > 0 {
		meta["fields"] = fields
	}
	if len(fields) == 1 {
		for _, msg := range fields {
			meta["message"] = msg
		}
	}
	return richErr.WithMetadata(meta)
}

// IsInvalidPayload reports a request rejected before it was sent
func IsInvalidPayload(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeInvalidPayload
}
