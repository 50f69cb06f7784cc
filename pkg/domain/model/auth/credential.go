package auth

import "log/slog"

// Credential is the token pair issued by the API on login or refresh
type Credential struct {
	AccessToken  string `json:"access_token" firestore:"access_token" masq:"secret"`
	RefreshToken string `json:"refresh_token,omitempty" firestore:"refresh_token" masq:"secret"`
}

// IsValid checks that an access token is present
func (c *Credential) IsValid() bool {
	return c != nil && c.AccessToken != ""
}

// HasRefreshToken reports whether the credential can be refreshed
func (c *Credential) HasRefreshToken() bool {
	return c != nil && c.RefreshToken != ""
}

// BearerValue returns the value for the Authorization header
func (c *Credential) BearerValue() string {
	return "Bearer " + c.AccessToken
}

// LogValue never exposes token material
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("access_token", c.AccessToken != ""),
		slog.Bool("refresh_token", c.RefreshToken != ""),
	)
}
