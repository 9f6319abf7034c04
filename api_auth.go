package skillsprint

import (
	"context"
	"strings"
)

const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathLogout   = "/api/auth/logout"
)

// LoginRequest is the body of POST /api/auth/login. The role selects the
// user or admin path; the admin key is only sent for ADMIN.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	AdminKey string `json:"adminKey,omitempty"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// RegisterRequest is the body of POST /api/auth/register. Role and admin
// key are only present for an admin registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	AdminKey string `json:"adminKey,omitempty"`
}

// NewLoginRequest builds a login payload, dropping the admin key unless the
// role is ADMIN
func NewLoginRequest(username, password string, role UserRole, adminKey string) LoginRequest {
	if role == "" {
		role = DefaultRole
	}
	req := LoginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
		Role:     string(role),
	}
	if role == RoleAdmin {
		req.AdminKey = adminKey
	}
	return req
}

// NewRegisterRequest builds a registration payload. A non empty adminKey
// turns it into an admin registration.
func NewRegisterRequest(username, email, password, adminKey string) RegisterRequest {
	req := RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if adminKey != "" {
		req.Role = string(RoleAdmin)
		req.AdminKey = adminKey
	}
	return req
}

// Login posts the credentials. It does not touch the session, see SignIn.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidPayload(err)
	}

	var res LoginResponse
	if err := c.Post(ctx, PathLogin, req, &res); err != nil {
		return nil, err
	}

	if res.Token == "" {
		return nil, ErrMissingToken
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return invalidPayload(err)
	}
	return c.Post(ctx, PathRegister, req, nil)
}

// Logout is the best effort backend invalidation used by Auther.Logout
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, PathLogout, nil, nil)
}

// SignIn logs in against the backend and stores the resulting session.
// The role and username echoed by the backend win over the token claims.
func SignIn(ctx context.Context, client *Client, auther *Auther, req LoginRequest) (*Session, error) {
	res, err := client.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return auther.Login(ctx, res.Token, res.Role, res.Username)
}
