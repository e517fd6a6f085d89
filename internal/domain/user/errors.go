package user

import "errors"

var (
	ErrOrganizationIDRequired = errors.New("organization ID is required")
	ErrAdminAccessRequired    = errors.New("organization admin access required")
	ErrSuperAdminRequired     = errors.New("super admin access required")
)
