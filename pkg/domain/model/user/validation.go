package user

import (
	"net/mail"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
)

// Validate checks the registration payload before it is sent
func (r *Registration) Validate() error {
	if r.Email == "" {
		return goerr.New("email is required", goerr.T(apperr.ErrTagRequiredField))
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return goerr.Wrap(err, "invalid email address",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.TV(apperr.EmailKey, r.Email))
	}
	if r.Password == "" {
		return goerr.New("password is required", goerr.T(apperr.ErrTagRequiredField))
	}
	return nil
}

// Validate rejects an update that would send nothing
func (p *ProfileUpdate) Validate() error {
	if p.IsEmpty() {
		return goerr.New("no profile field to update", goerr.T(apperr.ErrTagRequiredField))
	}
	return nil
}
