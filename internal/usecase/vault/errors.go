package vault

import "errors"

var (
	ErrDivisionNotFound   = errors.New("division not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDivisionNameTaken  = errors.New("division name already exists")

	ErrNameRequired  = errors.New("name is required")
	ErrMissingFields = errors.New("site, username and password are required")
)
