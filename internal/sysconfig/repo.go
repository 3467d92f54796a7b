// Package sysconfig stores the small set of runtime-tunable settings: the
// global submission deadline and the extraction service credential.
package sysconfig

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "config key not found" }

type Repo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
