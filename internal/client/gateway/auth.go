package gateway

import (
	"context"
	"net/http"
	"time"

	"mydaylog/internal/domain/usersettings"
)

// User is the account identity returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

type userEnvelope struct {
	User User `json:"user"`
}

func (c *Client) user(ctx context.Context, method, path string, body any) (User, error) {
	var env userEnvelope
	err := c.do(ctx, method, path, body, &env)
	return env.User, err
}

// Login signs in with email and PIN.
func (c *Client) Login(ctx context.Context, email, pin string) (User, error) {
	return c.user(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "pin": pin})
}

// Signup registers a new account and signs it in.
func (c *Client) Signup(ctx context.Context, fullName, email, pin, confirmPIN string) (User, error) {
	return c.user(ctx, http.MethodPost, "/auth/register", map[string]string{
		"full_name": fullName, "email": email, "pin": pin, "confirm_pin": confirmPIN,
	})
}

// Guest starts an anonymous session.
func (c *Client) Guest(ctx context.Context) (User, error) {
	return c.user(ctx, http.MethodPost, "/auth/guest", nil)
}

// Logout revokes the refresh token and clears the session cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (User, error) {
	return c.user(ctx, http.MethodGet, "/auth/me", nil)
}

// UpdateProfile changes the full name and email.
func (c *Client) UpdateProfile(ctx context.Context, fullName, email string) (User, error) {
	return c.user(ctx, http.MethodPatch, "/auth/me", map[string]string{"full_name": fullName, "email": email})
}

// ChangePIN replaces the PIN; the server rotates the session.
func (c *Client) ChangePIN(ctx context.Context, current, next, confirm string) error {
	return c.do(ctx, http.MethodPost, "/auth/change-pin", map[string]string{
		"current_pin": current, "new_pin": next, "confirm_pin": confirm,
	}, nil)
}

// DeleteAccount removes the signed-in account and all of its data.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/me", nil, nil)
}

// GetSettings returns the user's settings.
func (c *Client) GetSettings(ctx context.Context) (usersettings.Settings, error) {
	var s usersettings.Settings
	err := c.do(ctx, http.MethodGet, "/user-settings", nil, &s)
	return s, err
}

// UpdateSettings applies a partial settings update and returns the result.
func (c *Client) UpdateSettings(ctx context.Context, p usersettings.Patch) (usersettings.Settings, error) {
	var s usersettings.Settings
	err := c.do(ctx, http.MethodPatch, "/user-settings", p, &s)
	return s, err
}
