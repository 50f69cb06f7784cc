package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Profile names an independent credential slot, so that one workstation can
// keep sessions for several API environments side by side.
type Profile string

const DefaultProfile Profile = "default"

var profilePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,62}$`)

func (p Profile) String() string {
	return string(p)
}

// Validate checks that the profile is usable as a storage key segment
func (p Profile) Validate() error {
	if !profilePattern.MatchString(string(p)) {
		return goerr.New("invalid profile name", goerr.V("profile", string(p)))
	}
	return nil
}
