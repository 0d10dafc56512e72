package ports

import "context"

// LoginStore reads and records the API login user identifier. The newest row wins.
type LoginStore interface {
	LatestLoginUser(ctx context.Context) (userID string, found bool, err error)
	SaveLoginUser(ctx context.Context, userID string) error
}
