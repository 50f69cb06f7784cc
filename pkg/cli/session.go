package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/token"
	"github.com/m-mizutani/shopdesk/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

// logoutWait bounds how long the CLI waits for the server side logout
const logoutWait = 5 * time.Second

func printUser(w io.Writer, u *user.User) {
	field(w, "ID", u.ID)
	field(w, "Email", u.Email)
	field(w, "Name", u.DisplayName())
	if u.CompanyName != "" {
		field(w, "Company", u.CompanyName)
	}
	if u.Phone != "" {
		field(w, "Phone", u.Phone)
	}
	if u.Role != "" || u.IsAdmin {
		field(w, "Admin", u.IsAdministrator())
	}
	if u.LastLogin != nil {
		field(w, "Last login", u.LastLogin.Format(time.RFC3339))
	}
}

func cmdLogin(g *globalConfig) *cli.Command {
	var email, password string

	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session credential",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Account email",
				Sources:     cli.EnvVars("SHOPDESK_EMAIL"),
				Required:    true,
				Destination: &email,
			},
			&cli.StringFlag{
				Name:        "password",
				Usage:       "Account password",
				Sources:     cli.EnvVars("SHOPDESK_PASSWORD"),
				Required:    true,
				Destination: &password,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := g.setup(ctx, g.terminalNavigator())
			if err != nil {
				return err
			}
			defer rt.Close()

			u, err := rt.uc.Session.Login(ctx, email, password)
			if err != nil {
				return err
			}

			return rt.out.print(u, func(w io.Writer) {
				_, _ = successColor.Fprintf(w, "Logged in as %s\n", u.DisplayName())
			})
		},
	}
}

func cmdLogout(g *globalConfig) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := g.setup(ctx, g.terminalNavigator())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.uc.Session.Logout(ctx); err != nil {
				return err
			}

			// the server notification runs detached; give it a moment before exit
			waitCtx, cancel := context.WithTimeout(ctx, logoutWait)
			defer cancel()
			if err := async.Wait(waitCtx); err != nil {
				ctxlog.From(ctx).Warn("server logout still pending", "error", err)
			}

			return rt.out.done("Logged out")
		},
	}
}

type whoamiOutput struct {
	User      *user.User `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func cmdWhoami(g *globalConfig) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed in user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := g.setup(ctx, g.terminalNavigator())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.uc.Session.Restore(ctx); err != nil {
				return err
			}
			st := rt.uc.Session.State()
			if !st.IsAuthenticated() {
				return goerr.Wrap(apperr.ErrNotAuthenticated, "run `shopdesk login` first")
			}

			out := whoamiOutput{User: st.User}
			if cred, err := rt.store.Load(ctx); err == nil {
				if claims, err := token.Parse(cred.AccessToken); err == nil {
					out.ExpiresAt = claims.ExpiresAt
				}
			}

			return rt.out.print(out, func(w io.Writer) {
				printUser(w, out.User)
				if out.ExpiresAt != nil {
					field(w, "Token expires", out.ExpiresAt.Local().Format(time.RFC3339))
				}
			})
		},
	}
}

type sessionStatus struct {
	Profile       string         `json:"profile"`
	Status        auth.Status    `json:"status"`
	User          *user.User     `json:"user,omitempty"`
	Failure       *auth.Failure  `json:"error,omitempty"`
	HasRefresh    bool           `json:"has_refresh_token"`
	TokenExpires  *time.Time     `json:"token_expires_at,omitempty"`
	TokenLifetime *time.Duration `json:"-"`
}

func cmdSession(g *globalConfig) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Inspect or refresh the stored session",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Check the stored credential against the API",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					out := sessionStatus{Profile: g.credential.Profile}
					if cred, err := rt.store.Load(ctx); err == nil {
						out.HasRefresh = cred.HasRefreshToken()
						if claims, err := token.Parse(cred.AccessToken); err == nil {
							out.TokenExpires = claims.ExpiresAt
							remaining := claims.Remaining(time.Now())
							out.TokenLifetime = &remaining
						}
					}

					// an expired session is a status, not a command failure
					_ = rt.uc.Session.Restore(ctx)
					st := rt.uc.Session.State()
					out.Status = st.Status
					out.User = st.User
					out.Failure = st.Failure

					return rt.out.print(out, func(w io.Writer) {
						field(w, "Profile", out.Profile)
						field(w, "Status", out.Status)
						if out.User != nil {
							field(w, "User", out.User.DisplayName())
						}
						if out.TokenLifetime != nil {
							field(w, "Token valid for", out.TokenLifetime.Round(time.Second))
						}
						field(w, "Refresh token", out.HasRefresh)
						if out.Failure != nil {
							_, _ = warnColor.Fprintln(w, out.Failure.Message)
						}
					})
				},
			},
			{
				Name:  "refresh",
				Usage: "Exchange the refresh token for a new access token",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.uc.Session.Refresh(ctx); err != nil {
						return err
					}
					return rt.out.done("Session refreshed")
				},
			},
		},
	}
}

func cmdRegister(g *globalConfig) *cli.Command {
	var input user.Registration

	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true, Destination: &input.Email},
			&cli.StringFlag{Name: "password", Usage: "Account password", Sources: cli.EnvVars("SHOPDESK_PASSWORD"), Required: true, Destination: &input.Password},
			&cli.StringFlag{Name: "full-name", Usage: "Full name", Destination: &input.FullName},
			&cli.StringFlag{Name: "phone", Usage: "Phone number", Destination: &input.Phone},
			&cli.StringFlag{Name: "company-name", Usage: "Company name", Destination: &input.CompanyName},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rt, err := g.setup(ctx, g.terminalNavigator())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.uc.Session.Register(ctx, input); err != nil {
				return err
			}
			return rt.out.done(fmt.Sprintf("Account created for %s. Run `shopdesk login` to sign in.", input.Email),
				"email", input.Email)
		},
	}
}

func cmdPassword(g *globalConfig) *cli.Command {
	var (
		email            string
		resetToken       string
		password         string
		current, updated string
	)

	return &cli.Command{
		Name:  "password",
		Usage: "Recover, reset or change the account password",
		Commands: []*cli.Command{
			{
				Name:  "forgot",
				Usage: "Send a password recovery email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true, Destination: &email},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.uc.Session.ForgotPassword(ctx, email); err != nil {
						return err
					}
					return rt.out.done("If the account exists, a recovery email has been sent")
				},
			},
			{
				Name:  "reset",
				Usage: "Set a new password with the token from the recovery email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Token from the recovery email", Required: true, Destination: &resetToken},
					&cli.StringFlag{Name: "password", Usage: "New password", Sources: cli.EnvVars("SHOPDESK_NEW_PASSWORD"), Required: true, Destination: &password},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.uc.Session.ResetPassword(ctx, resetToken, password); err != nil {
						return err
					}
					return rt.out.done("Password reset. You can now log in with the new password.")
				},
			},
			{
				Name:  "change",
				Usage: "Change the password of the signed in user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Usage: "Current password", Sources: cli.EnvVars("SHOPDESK_PASSWORD"), Required: true, Destination: &current},
					&cli.StringFlag{Name: "new", Usage: "New password", Sources: cli.EnvVars("SHOPDESK_NEW_PASSWORD"), Required: true, Destination: &updated},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					if err := rt.uc.Session.ChangePassword(ctx, current, updated); err != nil {
						return err
					}
					return rt.out.done("Password changed")
				},
			},
		},
	}
}

// profileUpdateFromFlags sends only the flags given on the command line
func profileUpdateFromFlags(cmd *cli.Command) user.ProfileUpdate {
	var update user.ProfileUpdate
	str := func(name string) *string {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.String(name)
		return &v
	}
	boolean := func(name string) *bool {
		if !cmd.IsSet(name) {
			return nil
		}
		v := cmd.Bool(name)
		return &v
	}

	update.FullName = str("full-name")
	update.Phone = str("phone")
	update.CompanyName = str("company-name")
	update.Bio = str("bio")
	update.EmailNotifications = boolean("email-notifications")
	update.OrderNotifications = boolean("order-notifications")
	update.InventoryAlerts = boolean("inventory-alerts")
	update.PriceChangeAlerts = boolean("price-change-alerts")
	return update
}

func cmdProfile(g *globalConfig) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the signed in user's profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the profile",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					u, err := rt.uc.Session.FetchCurrentUser(ctx)
					if err != nil {
						return err
					}
					return rt.out.print(u, func(w io.Writer) { printUser(w, u) })
				},
			},
			{
				Name:  "update",
				Usage: "Update profile fields; only given flags are changed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "full-name", Usage: "Full name"},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
					&cli.StringFlag{Name: "company-name", Usage: "Company name"},
					&cli.StringFlag{Name: "bio", Usage: "Short bio"},
					&cli.BoolFlag{Name: "email-notifications", Usage: "Receive email notifications"},
					&cli.BoolFlag{Name: "order-notifications", Usage: "Receive order notifications"},
					&cli.BoolFlag{Name: "inventory-alerts", Usage: "Receive inventory alerts"},
					&cli.BoolFlag{Name: "price-change-alerts", Usage: "Receive price change alerts"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					rt, err := g.setup(ctx, g.terminalNavigator())
					if err != nil {
						return err
					}
					defer rt.Close()

					u, err := rt.uc.Session.UpdateProfile(ctx, profileUpdateFromFlags(cmd))
					if err != nil {
						return err
					}
					return rt.out.print(u, func(w io.Writer) {
						_, _ = successColor.Fprintln(w, "Profile updated")
						printUser(w, u)
					})
				},
			},
		},
	}
}
