package rentease

import "context"

// SignupRequest is the body for account creation.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// LoginRequest is the body for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Signup creates a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, "/auth/signup", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates a user and returns the session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var result AuthResult
	if err := c.postJSON(ctx, "/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ForgotPassword triggers the backend's password-reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.postJSON(ctx, "/auth/forgot-password", body, nil)
}
