package api

import (
	"context"
	"net/http"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
)

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string     `json:"access_token" masq:"secret"`
	RefreshToken string     `json:"refresh_token,omitempty" masq:"secret"`
	TokenType    string     `json:"token_type,omitempty"`
	User         *user.User `json:"user,omitempty"`
}

// Credential returns the token pair of the response
func (r *TokenResponse) Credential() *auth.Credential {
	return &auth.Credential{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

// AuthAPI groups the /auth endpoints
type AuthAPI struct {
	client *Client
}

// Auth returns the /auth endpoint group
func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{client: c}
}

// Login exchanges email and password for a token pair. A 401 here means bad
// credentials, so it never triggers the login redirect.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	_, err := a.client.Do(ctx, &Request{
		Method:           http.MethodPost,
		Path:             "/auth/login",
		Body:             map[string]string{"email": email, "password": password},
		SkipAuthRedirect: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The server may answer with the new user.
func (a *AuthAPI) Register(ctx context.Context, input user.Registration) (*user.User, error) {
	var u user.User
	_, err := a.client.Do(ctx, &Request{
		Method:           http.MethodPost,
		Path:             "/auth/register",
		Body:             input,
		SkipAuthRedirect: true,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout revokes accessToken on the server. The token is passed explicitly
// because the local credential is usually gone by the time this runs.
func (a *AuthAPI) Logout(ctx context.Context, accessToken string) error {
	req := &Request{
		Method:           http.MethodPost,
		Path:             "/auth/logout",
		SkipAuthRedirect: true,
	}
	if accessToken != "" {
		req.Header = http.Header{headerAuthorization: {"Bearer " + accessToken}}
	}
	_, err := a.client.Do(ctx, req, nil)
	return err
}

// Refresh exchanges a refresh token for a new pair
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	_, err := a.client.Do(ctx, &Request{
		Method:           http.MethodPost,
		Path:             "/auth/refresh",
		Body:             map[string]string{"refresh_token": refreshToken},
		SkipAuthRedirect: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForgotPassword asks the server to mail a reset link
func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	_, err := a.client.Do(ctx, &Request{
		Method:           http.MethodPost,
		Path:             "/auth/forgot-password",
		Body:             map[string]string{"email": email},
		SkipAuthRedirect: true,
	}, nil)
	return err
}

// ResetPassword sets a new password using the token from the reset link
func (a *AuthAPI) ResetPassword(ctx context.Context, token, password string) error {
	_, err := a.client.Do(ctx, &Request{
		Method:           http.MethodPost,
		Path:             "/auth/reset-password",
		Body:             map[string]string{"token": token, "password": password},
		SkipAuthRedirect: true,
	}, nil)
	return err
}

// ChangePassword changes the password of the signed in user
func (a *AuthAPI) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := a.client.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/auth/change-password",
		Body:   map[string]string{"old_password": oldPassword, "new_password": newPassword},
	}, nil)
	return err
}

// UsersAPI groups the /users endpoints
type UsersAPI struct {
	client *Client
}

// Users returns the /users endpoint group
func (c *Client) Users() *UsersAPI {
	return &UsersAPI{client: c}
}

// Me returns the signed in user
func (a *UsersAPI) Me(ctx context.Context) (*user.User, error) {
	var u user.User
	if _, err := a.client.Do(ctx, &Request{Method: http.MethodGet, Path: "/users/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe applies a partial profile update and returns the server's view
func (a *UsersAPI) UpdateMe(ctx context.Context, update user.ProfileUpdate) (*user.User, error) {
	var u user.User
	_, err := a.client.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   "/users/me",
		Body:   update,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
