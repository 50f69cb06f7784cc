package interfaces

import (
	"context"

	"github.com/m-mizutani/shopdesk/pkg/domain/model/analytics"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
)

// SessionUseCases is the session manager as seen by the CLI and the gateway
type SessionUseCases interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*user.User, error)
	Register(ctx context.Context, input user.Registration) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	FetchCurrentUser(ctx context.Context) (*user.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	UpdateProfile(ctx context.Context, update user.ProfileUpdate) (*user.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	SetError(failure *auth.Failure)
	ClearError()
	State() auth.State
	Subscribe(fn func(auth.State)) (cancel func())
}

// AnalyticsUseCases loads and exports the analytics page data
type AnalyticsUseCases interface {
	Load(ctx context.Context, r analytics.Range) (*analytics.Report, error)
	Export(ctx context.Context, r analytics.Range, exportType string) (string, error)
}
