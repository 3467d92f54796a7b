package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/certificates"
	"github.com/mona5211005/certificate-system/internal/files"
	"github.com/mona5211005/certificate-system/internal/shared/config"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/server/middleware"
	"github.com/mona5211005/certificate-system/internal/shared/server/respond"
	"github.com/mona5211005/certificate-system/internal/sysconfig"
	"github.com/mona5211005/certificate-system/internal/uploads"
	"github.com/mona5211005/certificate-system/internal/users"
)

// Deps carries the wired handlers into the router. Construction happens in
// bootstrap; this package only decides paths and middleware order.
type Deps struct {
	Config       config.Config
	Users        *users.Service
	Uploads      *uploads.Handler
	Files        *files.Handler
	Certificates *certificates.Handler
	Admin        *sysconfig.Handler
}

// NewRouter constructs the gin engine with middleware and routes
// registered. Health and metrics stay outside the identity gate so probes
// and scrapers need no headers.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(d.Config.CORSAllowOrigin),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.Identity())

	registerMeRoutes(api, d.Users)
	if d.Uploads != nil {
		d.Uploads.RegisterRoutes(api)
	}
	if d.Files != nil {
		d.Files.RegisterRoutes(api.Group("/files"))
	}
	if d.Certificates != nil {
		d.Certificates.RegisterRoutes(api)
	}
	if d.Admin != nil {
		d.Admin.RegisterRoutes(api.Group("/admin"))
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
