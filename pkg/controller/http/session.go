package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/domain/model/user"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" masq:"secret"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.PathKey, r.URL.Path))
	}
	return nil
}

func getSessionHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, session.State())
	}
}

func loginHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		if _, err := session.Login(r.Context(), req.Email, req.Password); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, session.State())
	}
}

func logoutHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := session.Logout(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, session.State())
	}
}

func refreshHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := session.Refresh(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, session.State())
	}
}

func updateProfileHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update user.ProfileUpdate
		if err := decodeBody(r, &update); err != nil {
			handleError(w, r, err)
			return
		}

		updated, err := session.UpdateProfile(r.Context(), update)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, updated)
	}
}

func clearErrorHandler(session interfaces.SessionUseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session.SetError(nil)
		w.WriteHeader(http.StatusNoContent)
	}
}
