package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

var ErrDuplicateAccount = errDuplicateAccount{}

type errDuplicateAccount struct{}

func (errDuplicateAccount) Error() string { return "account already registered" }

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByAccount(ctx context.Context, account string) (User, error)
}
