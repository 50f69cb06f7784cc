package usecase

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/auth"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/utils/async"
)

// Session owns the authentication state of one API client. All state
// changes go through update so subscribers observe them in order.
type Session struct {
	client *api.Client
	store  interfaces.CredentialStore

	serverLogout bool
	removeHook   func()

	mu      sync.Mutex
	state   auth.State
	pending map[auth.Operation]struct{}

	// held while subscribers run so that notifications never interleave
	notifyMu sync.Mutex
	subMu    sync.Mutex
	subSeq   int
	subs     map[int]func(auth.State)
}

var _ interfaces.SessionUseCases = (*Session)(nil)

// SessionOption configures Session
type SessionOption func(*Session)

// WithoutServerLogout makes Logout local only. The server is not told that
// the token was abandoned.
func WithoutServerLogout() SessionOption {
	return func(s *Session) {
		s.serverLogout = false
	}
}

// WithSubscriber registers fn before the first transition
func WithSubscriber(fn func(auth.State)) SessionOption {
	return func(s *Session) {
		s.subscribe(fn)
	}
}

// NewSession creates a session manager bound to client and store. It starts
// anonymous; call Restore to pick up a stored credential.
func NewSession(client *api.Client, store interfaces.CredentialStore, opts ...SessionOption) *Session {
	s := &Session{
		client:       client,
		store:        store,
		serverLogout: true,
		state:        auth.State{Status: auth.StatusAnonymous},
		pending:      make(map[auth.Operation]struct{}),
		subs:         make(map[int]func(auth.State)),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.removeHook = client.OnUnauthorized(s.onUnauthorized)
	return s
}

// Close detaches the session from the client's 401 notifications
func (s *Session) Close() {
	if s.removeHook != nil {
		s.removeHook()
	}
}

// State returns a snapshot of the current state
func (s *Session) State() auth.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every state transition. fn runs synchronously
// on the goroutine that caused the transition and must not call back into
// methods of Session that change state.
func (s *Session) Subscribe(fn func(auth.State)) (cancel func()) {
	id := s.subscribe(fn)
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) subscribe(fn func(auth.State)) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subSeq++
	s.subs[s.subSeq] = fn
	return s.subSeq
}

func (s *Session) subscribers() []func(auth.State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	fns := make([]func(auth.State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	return fns
}

// update applies fn to the state and notifies subscribers with the result
func (s *Session) update(fn func(st *auth.State)) {
	s.mu.Lock()
	if fn != nil {
		fn(&s.state)
	}
	s.state.Pending = s.pendingList()
	snapshot := s.state.Clone()

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, sub := range s.subscribers() {
		sub(snapshot.Clone())
	}
}

func (s *Session) pendingList() []auth.Operation {
	if len(s.pending) == 0 {
		return nil
	}
	ops := make([]auth.Operation, 0, len(s.pending))
	for _, op := range allOperations {
		if _, ok := s.pending[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

var allOperations = []auth.Operation{
	auth.OpRestore,
	auth.OpLogin,
	auth.OpRegister,
	auth.OpRefresh,
	auth.OpFetchUser,
	auth.OpForgotPassword,
	auth.OpResetPassword,
	auth.OpUpdateProfile,
	auth.OpChangePassword,
}

// begin marks op as in flight and applies fn in the same transition. A
// second call while op is in flight is rejected without touching the state.
func (s *Session) begin(op auth.Operation, fn func(st *auth.State)) error {
	s.mu.Lock()
	if _, busy := s.pending[op]; busy {
		s.mu.Unlock()
		return goerr.Wrap(apperr.ErrOperationInProgress, "operation already in flight",
			goerr.TV(apperr.OperationKey, string(op)))
	}
	s.pending[op] = struct{}{}
	s.mu.Unlock()

	s.update(fn)
	return nil
}

func (s *Session) end(op auth.Operation, fn func(st *auth.State)) {
	s.update(func(st *auth.State) {
		delete(s.pending, op)
		if fn != nil {
			fn(st)
		}
	})
}

// fail records f as the current failure, logs it and returns the error for
// the caller
func (s *Session) fail(ctx context.Context, op auth.Operation, f *auth.Failure, mutate func(st *auth.State), values ...goerr.Option) error {
	s.end(op, func(st *auth.State) {
		if mutate != nil {
			mutate(st)
		}
		st.Failure = f
	})

	opts := append([]goerr.Option{
		failureTag(f.Kind),
		goerr.TV(apperr.OperationKey, string(op)),
		goerr.V("kind", string(f.Kind)),
	}, values...)
	if f.StatusCode > 0 {
		opts = append(opts, goerr.TV(apperr.StatusKey, f.StatusCode))
	}
	err := goerr.Wrap(f, string(op)+" failed", opts...)

	ctxlog.From(ctx).Warn("session operation failed",
		"operation", op,
		"kind", f.Kind,
		"status", f.StatusCode,
		"error", err,
	)
	return err
}

func (s *Session) onUnauthorized(ctx context.Context) {
	ctxlog.From(ctx).Info("credential rejected by server, dropping current user")
	s.update(func(st *auth.State) {
		st.User = nil
		if st.Status == auth.StatusAuthenticated {
			st.Status = auth.StatusAnonymous
		}
	})
}

func clearUser(st *auth.State) {
	st.User = nil
	st.Status = auth.StatusAnonymous
}

// Restore resumes a stored session. Without a stored credential the session
// stays anonymous and nil is returned.
func (s *Session) Restore(ctx context.Context) error {
	if err := s.begin(auth.OpRestore, nil); err != nil {
		return err
	}

	cred, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialNotFound) {
			s.end(auth.OpRestore, clearUser)
			return nil
		}
		f := &auth.Failure{Kind: auth.FailureUnknown, Message: MsgSessionExpired, Err: err}
		return s.fail(ctx, auth.OpRestore, f, clearUser)
	}

	s.client.SetAuthorization(cred.AccessToken)
	s.update(func(st *auth.State) {
		st.Status = auth.StatusAuthenticating
	})

	u, err := s.client.Users().Me(ctx)
	if err != nil {
		if clearErr := s.client.ClearAuthorization(ctx, s.store); clearErr != nil {
			ctxlog.From(ctx).Warn("failed to clear credential", "error", clearErr)
		}
		f := &auth.Failure{
			Kind:       auth.FailureSessionExpired,
			Message:    MsgSessionExpired,
			StatusCode: api.StatusCode(err),
			Err:        err,
		}
		return s.fail(ctx, auth.OpRestore, f, clearUser)
	}

	s.end(auth.OpRestore, func(st *auth.State) {
		st.User = u
		st.Status = auth.StatusAuthenticated
		st.Failure = nil
	})
	ctxlog.From(ctx).Debug("session restored", "user_id", u.ID)
	return nil
}

// Login exchanges email and password for a credential and makes the
// returned user current
func (s *Session) Login(ctx context.Context, email, password string) (*user.User, error) {
	err := s.begin(auth.OpLogin, func(st *auth.State) {
		st.Status = auth.StatusAuthenticating
		st.Failure = nil
	})
	if err != nil {
		return nil, err
	}

	loginFailed := func(st *auth.State) {
		st.User = nil
		st.Status = auth.StatusError
	}
	emailValue := goerr.TV(apperr.EmailKey, email)

	resp, err := s.client.Auth().Login(ctx, email, password)
	if err != nil {
		f := classifyFailure(err, MsgLoginFailed,
			onStatus(auth.FailureInvalidCredentials, MsgInvalidCredentials, http.StatusUnauthorized),
		)
		return nil, s.fail(ctx, auth.OpLogin, f, loginFailed, emailValue)
	}

	cred := resp.Credential()
	if !cred.IsValid() {
		f := &auth.Failure{Kind: auth.FailureServer, Message: MsgLoginFailed, Err: auth.ErrInvalidCredential}
		return nil, s.fail(ctx, auth.OpLogin, f, loginFailed, emailValue)
	}

	if err := s.store.Save(ctx, cred); err != nil {
		f := &auth.Failure{Kind: auth.FailureUnknown, Message: MsgLoginFailed, Err: err}
		return nil, s.fail(ctx, auth.OpLogin, f, loginFailed, emailValue)
	}
	s.client.SetAuthorization(cred.AccessToken)

	u := resp.User
	if u == nil {
		u, err = s.client.Users().Me(ctx)
		if err != nil {
			if clearErr := s.client.ClearAuthorization(ctx, s.store); clearErr != nil {
				ctxlog.From(ctx).Warn("failed to clear credential", "error", clearErr)
			}
			f := classifyFailure(err, MsgLoginFailed,
				onStatus(auth.FailureInvalidCredentials, MsgInvalidCredentials, http.StatusUnauthorized),
			)
			return nil, s.fail(ctx, auth.OpLogin, f, loginFailed, emailValue)
		}
	}

	s.end(auth.OpLogin, func(st *auth.State) {
		st.User = u
		st.Status = auth.StatusAuthenticated
		st.Failure = nil
	})
	ctxlog.From(ctx).Info("logged in", "user_id", u.ID)

	out := *u
	return &out, nil
}

// Register creates an account. The session status is not changed; the new
// user logs in separately.
func (s *Session) Register(ctx context.Context, input user.Registration) error {
	if err := s.begin(auth.OpRegister, func(st *auth.State) { st.Failure = nil }); err != nil {
		return err
	}
	emailValue := goerr.TV(apperr.EmailKey, input.Email)

	if err := input.Validate(); err != nil {
		return s.fail(ctx, auth.OpRegister, validationFailure(err, MsgInvalidRegistration), nil, emailValue)
	}

	if _, err := s.client.Auth().Register(ctx, input); err != nil {
		f := classifyFailure(err, MsgRegistrationFailed,
			onStatusServerFirst(auth.FailureValidation, MsgInvalidRegistration, http.StatusBadRequest, http.StatusUnprocessableEntity),
			onStatus(auth.FailureConflict, MsgEmailInUse, http.StatusConflict),
		)
		if f.Kind == auth.FailureServer {
			f.Message = MsgRegistrationFailed
		}
		return s.fail(ctx, auth.OpRegister, f, nil, emailValue)
	}

	s.end(auth.OpRegister, nil)
	ctxlog.From(ctx).Info("registered account", "email", input.Email)
	return nil
}

// Logout forgets the session locally and then tells the server in the
// background with the abandoned token. It never waits for the server.
func (s *Session) Logout(ctx context.Context) error {
	var previous string
	if cred, err := s.store.Load(ctx); err == nil {
		previous = cred.AccessToken
	}

	clearErr := s.client.ClearAuthorization(ctx, s.store)

	s.update(func(st *auth.State) {
		clearUser(st)
		st.Failure = nil
	})

	if s.serverLogout && previous != "" {
		client := s.client
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := client.Auth().Logout(ctx, previous); err != nil {
				return goerr.Wrap(err, "server side logout failed")
			}
			return nil
		})
	}

	if clearErr != nil {
		return goerr.Wrap(clearErr, "failed to clear stored credential")
	}
	ctxlog.From(ctx).Info("logged out")
	return nil
}

// Refresh exchanges the stored refresh token for a new credential
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.begin(auth.OpRefresh, func(st *auth.State) { st.Failure = nil }); err != nil {
		return err
	}

	expired := func(st *auth.State) {
		clearUser(st)
	}

	cred, err := s.store.Load(ctx)
	if err != nil || !cred.HasRefreshToken() {
		cause := apperr.ErrNoRefreshToken
		if err != nil && !errors.Is(err, auth.ErrCredentialNotFound) {
			cause = goerr.Wrap(err, "failed to load credential")
		}
		f := &auth.Failure{Kind: auth.FailureSessionExpired, Message: MsgSessionExpired, Err: cause}
		return s.fail(ctx, auth.OpRefresh, f, expired)
	}

	resp, err := s.client.Auth().Refresh(ctx, cred.RefreshToken)
	if err != nil {
		f := classifyFailure(err, MsgRefreshFailed,
			onStatus(auth.FailureSessionExpired, MsgSessionExpired, http.StatusBadRequest, http.StatusUnauthorized),
		)
		if f.Kind != auth.FailureSessionExpired {
			return s.fail(ctx, auth.OpRefresh, f, nil)
		}
		if clearErr := s.client.ClearAuthorization(ctx, s.store); clearErr != nil {
			ctxlog.From(ctx).Warn("failed to clear credential", "error", clearErr)
		}
		return s.fail(ctx, auth.OpRefresh, f, expired)
	}

	next := resp.Credential()
	if !next.IsValid() {
		f := &auth.Failure{Kind: auth.FailureServer, Message: MsgRefreshFailed, Err: auth.ErrInvalidCredential}
		return s.fail(ctx, auth.OpRefresh, f, nil)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}
	if err := s.store.Save(ctx, next); err != nil {
		f := &auth.Failure{Kind: auth.FailureUnknown, Message: MsgRefreshFailed, Err: err}
		return s.fail(ctx, auth.OpRefresh, f, nil)
	}
	s.client.SetAuthorization(next.AccessToken)

	s.end(auth.OpRefresh, func(st *auth.State) {
		if resp.User != nil {
			st.User = resp.User
			st.Status = auth.StatusAuthenticated
		}
	})
	ctxlog.From(ctx).Debug("credential refreshed")
	return nil
}

// FetchCurrentUser reloads the current user from the server
func (s *Session) FetchCurrentUser(ctx context.Context) (*user.User, error) {
	if err := s.begin(auth.OpFetchUser, nil); err != nil {
		return nil, err
	}

	u, err := s.client.Users().Me(ctx)
	if err != nil {
		f := classifyFailure(err, MsgFetchUserFailed,
			onStatus(auth.FailureSessionExpired, MsgSessionExpired, http.StatusUnauthorized),
		)
		var mutate func(st *auth.State)
		if f.Kind == auth.FailureSessionExpired {
			mutate = clearUser
		}
		return nil, s.fail(ctx, auth.OpFetchUser, f, mutate)
	}

	s.end(auth.OpFetchUser, func(st *auth.State) {
		st.User = u
		st.Status = auth.StatusAuthenticated
	})

	out := *u
	return &out, nil
}

// ForgotPassword asks the server to send a recovery email
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	if err := s.begin(auth.OpForgotPassword, func(st *auth.State) { st.Failure = nil }); err != nil {
		return err
	}
	emailValue := goerr.TV(apperr.EmailKey, email)

	if email == "" {
		err := goerr.New("email is required", goerr.T(apperr.ErrTagRequiredField))
		return s.fail(ctx, auth.OpForgotPassword, validationFailure(err, MsgPasswordRecovery), nil, emailValue)
	}

	if err := s.client.Auth().ForgotPassword(ctx, email); err != nil {
		f := classifyFailure(err, MsgPasswordRecovery)
		return s.fail(ctx, auth.OpForgotPassword, f, nil, emailValue)
	}

	s.end(auth.OpForgotPassword, nil)
	return nil
}

// ResetPassword sets a new password with the token from the recovery email
func (s *Session) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.begin(auth.OpResetPassword, func(st *auth.State) { st.Failure = nil }); err != nil {
		return err
	}

	if token == "" || password == "" {
		err := goerr.New("token and password are required", goerr.T(apperr.ErrTagRequiredField))
		return s.fail(ctx, auth.OpResetPassword, validationFailure(err, MsgPasswordReset), nil)
	}

	if err := s.client.Auth().ResetPassword(ctx, token, password); err != nil {
		f := classifyFailure(err, MsgPasswordReset,
			onStatus(auth.FailureInvalidToken, MsgInvalidToken, http.StatusBadRequest),
		)
		return s.fail(ctx, auth.OpResetPassword, f, nil)
	}

	s.end(auth.OpResetPassword, nil)
	return nil
}

// UpdateProfile sends the changed fields and replaces the current user with
// what the server returns
func (s *Session) UpdateProfile(ctx context.Context, update user.ProfileUpdate) (*user.User, error) {
	if err := s.begin(auth.OpUpdateProfile, func(st *auth.State) { st.Failure = nil }); err != nil {
		return nil, err
	}

	if err := update.Validate(); err != nil {
		return nil, s.fail(ctx, auth.OpUpdateProfile, validationFailure(err, MsgInvalidProfileUpdate), nil)
	}

	u, err := s.client.Users().UpdateMe(ctx, update)
	if err != nil {
		f := classifyFailure(err, MsgProfileUpdate,
			onStatusServerFirst(auth.FailureValidation, MsgProfileUpdate, http.StatusBadRequest, http.StatusUnprocessableEntity),
			onStatus(auth.FailureSessionExpired, MsgSessionExpired, http.StatusUnauthorized),
		)
		var mutate func(st *auth.State)
		if f.Kind == auth.FailureSessionExpired {
			mutate = clearUser
		}
		return nil, s.fail(ctx, auth.OpUpdateProfile, f, mutate)
	}

	s.end(auth.OpUpdateProfile, func(st *auth.State) {
		st.User = u
		if st.Status != auth.StatusAuthenticated {
			st.Status = auth.StatusAuthenticated
		}
	})

	out := *u
	return &out, nil
}

// ChangePassword replaces the password of the current user
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := s.begin(auth.OpChangePassword, func(st *auth.State) { st.Failure = nil }); err != nil {
		return err
	}

	if oldPassword == "" || newPassword == "" {
		err := goerr.New("current and new password are required", goerr.T(apperr.ErrTagRequiredField))
		return s.fail(ctx, auth.OpChangePassword, validationFailure(err, MsgPasswordChange), nil)
	}

	if err := s.client.Auth().ChangePassword(ctx, oldPassword, newPassword); err != nil {
		f := classifyFailure(err, MsgPasswordChange,
			onStatus(auth.FailureWrongPassword, MsgWrongPassword, http.StatusBadRequest),
			onStatus(auth.FailureSessionExpired, MsgSessionExpired, http.StatusUnauthorized),
		)
		return s.fail(ctx, auth.OpChangePassword, f, nil)
	}

	s.end(auth.OpChangePassword, nil)
	return nil
}

// SetError replaces the current failure. nil dismisses it.
func (s *Session) SetError(failure *auth.Failure) {
	if failure == nil {
		s.ClearError()
		return
	}
	f := *failure
	s.update(func(st *auth.State) {
		st.Failure = &f
	})
}

// ClearError dismisses the current failure. A failed login falls back to
// anonymous.
func (s *Session) ClearError() {
	s.update(func(st *auth.State) {
		st.Failure = nil
		if st.Status == auth.StatusError {
			st.Status = auth.StatusAnonymous
		}
	})
}
