package main

import (
	"errors"
	"sync"

	"github.com/mona5211005/certificate-system/internal/bootstrap"
	"github.com/mona5211005/certificate-system/internal/shared/config"
)

// commandContext wires the application once per invocation so every
// subcommand shares the same repositories and services. Admin changes must
// land in the real database, so the in-memory fallback is refused here.
type commandContext struct {
	appOnce sync.Once
	app     *bootstrap.App
	appErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureApp() (*bootstrap.App, error) {
	c.appOnce.Do(func() {
		cfg := config.Load()
		if bootstrap.DatabaseTarget(cfg) == "" {
			c.appErr = errors.New("no database configured: set DATABASE_URL or SQLITE_PATH")
			return
		}
		app, err := bootstrap.Build(cfg)
		if err != nil {
			c.appErr = err
			return
		}
		if app.DB == nil {
			app.Close()
			c.appErr = errors.New("database unavailable: check DATABASE_URL or SQLITE_PATH")
			return
		}
		c.app = app
	})
	return c.app, c.appErr
}

func (c *commandContext) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
