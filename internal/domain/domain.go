package domain

import (
	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

// Container wires domain services together so entrypoints depend on one value
// instead of individual repositories.
type Container struct {
	Users users.Service
}

// Options configures the domain container.
type Options struct {
	UserRepo users.Repository
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	userRepo := opts.UserRepo
	if userRepo == nil {
		userRepo = users.NullRepository{}
	}

	return Container{
		Users: users.NewService(userRepo),
	}
}
