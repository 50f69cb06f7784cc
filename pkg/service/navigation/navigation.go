package navigation

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
)

// DefaultLoginPath is the login entry point of the dashboard
const DefaultLoginPath = "/login"

// Recorder remembers where it was sent. Tests use it as the navigator.
type Recorder struct {
	mu        sync.Mutex
	loginPath string
	current   string
	visits    []string
}

// NewRecorder creates a Recorder starting at current
func NewRecorder(loginPath, current string) *Recorder {
	return &Recorder{loginPath: loginPath, current: current}
}

func (r *Recorder) CurrentPath(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Recorder) GoToLogin(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = r.loginPath
	r.visits = append(r.visits, r.loginPath)
}

// SetPath moves the recorder without counting a redirect
func (r *Recorder) SetPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = path
}

// Redirects returns how many times GoToLogin was called
func (r *Recorder) Redirects() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits)
}

// Terminal tells a CLI user to sign in again. The current path is the
// command being run, so the login command itself is never interrupted.
type Terminal struct {
	w         io.Writer
	loginPath string
	current   string
	once      sync.Once
}

// NewTerminal creates a Terminal navigator writing hints to w
func NewTerminal(w io.Writer, loginPath, current string) *Terminal {
	return &Terminal{w: w, loginPath: loginPath, current: current}
}

func (t *Terminal) CurrentPath(ctx context.Context) string {
	return t.current
}

func (t *Terminal) GoToLogin(ctx context.Context) {
	t.once.Do(func() {
		ctxlog.From(ctx).Debug("session invalidated by server", "login_path", t.loginPath)
		msg := color.New(color.FgYellow).Sprint("Your session has ended. Run `shopdesk login` to sign in again.")
		if _, err := fmt.Fprintln(t.w, msg); err != nil {
			ctxlog.From(ctx).Warn("failed to write login hint", "error", err)
		}
	})
}

// Scoped is the gateway navigator. Each inbound request carries its own
// path and redirect flag in the context, see WithRequest.
type Scoped struct {
	loginPath string
}

// NewScoped creates a Scoped navigator
func NewScoped(loginPath string) *Scoped {
	return &Scoped{loginPath: loginPath}
}

// Redirect records whether GoToLogin fired during one inbound request
type Redirect struct {
	mu       sync.Mutex
	path     string
	location string
}

// Location returns the login path if a redirect was requested
func (r *Redirect) Location() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location, r.location != ""
}

type redirectKey struct{}

// WithRequest attaches a fresh Redirect for an inbound request at path
func WithRequest(ctx context.Context, path string) (context.Context, *Redirect) {
	r := &Redirect{path: path}
	return context.WithValue(ctx, redirectKey{}, r), r
}

func redirectFrom(ctx context.Context) *Redirect {
	if r, ok := ctx.Value(redirectKey{}).(*Redirect); ok {
		return r
	}
	return nil
}

func (s *Scoped) CurrentPath(ctx context.Context) string {
	if r := redirectFrom(ctx); r != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.path
	}
	return ""
}

func (s *Scoped) GoToLogin(ctx context.Context) {
	r := redirectFrom(ctx)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.location = s.loginPath
	r.path = s.loginPath
}

var (
	_ interfaces.Navigator = (*Recorder)(nil)
	_ interfaces.Navigator = (*Terminal)(nil)
	_ interfaces.Navigator = (*Scoped)(nil)
)
