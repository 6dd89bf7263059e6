package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/pipeline"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// logListLimit caps how many job records one listing returns.
const logListLimit = 100

// Handlers holds the dependencies shared by every endpoint.
type Handlers struct {
	cfg      *shared.Config
	logger   *log.Logger
	auth     *auth.Authenticator
	users    *repositories.UserRepository
	jobs     *repositories.JobLogRepository
	settings *repositories.SettingRepository
	pipeline *pipeline.Pipeline
}

func NewHandlers(
	cfg *shared.Config,
	logger *log.Logger,
	authenticator *auth.Authenticator,
	users *repositories.UserRepository,
	jobs *repositories.JobLogRepository,
	settings *repositories.SettingRepository,
	pl *pipeline.Pipeline,
) *Handlers {
	return &Handlers{
		cfg:      cfg,
		logger:   logger,
		auth:     authenticator,
		users:    users,
		jobs:     jobs,
		settings: settings,
		pipeline: pl,
	}
}

// NewRouter wires every endpoint into a [BasicRouter].
//
// Registration order matters: login is registered before the auth middleware
// joins the stack, so it is the only route reachable without a token.
func NewRouter(h *Handlers, limiter *auth.LoginLimiter) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RequestLogger(h.logger), CORS(), MaxBytes(h.cfg.MaxFileSizeBytes()))

	r.Handle(http.MethodPost, "/api/login", limiter.Middleware(http.HandlerFunc(h.Login)))

	r.Use(Middleware(auth.Middleware(h.auth)))

	r.Handle(http.MethodPost, "/api/logout", http.HandlerFunc(h.Logout))
	r.Handle(http.MethodPost, "/api/upload", http.HandlerFunc(h.Upload))
	r.Handle(http.MethodPost, "/api/youtube", http.HandlerFunc(h.DownloadYouTube))
	r.Handle(http.MethodPost, "/api/spotify", http.HandlerFunc(h.DownloadSpotify))
	r.Handle(http.MethodGet, "/api/progress/{session}", http.HandlerFunc(h.ProgressStream))

	r.Handle(http.MethodGet, "/api/user/me", http.HandlerFunc(h.UserInfo))
	r.Handle(http.MethodGet, "/api/user/directories", http.HandlerFunc(h.UserDirectories))
	r.Handle(http.MethodPost, "/api/user/change-password", http.HandlerFunc(h.ChangeOwnPassword))
	r.Handle(http.MethodPost, "/api/user/change-username", http.HandlerFunc(h.ChangeOwnUsername))

	r.Handle(http.MethodGet, "/api/admin/logs", http.HandlerFunc(h.ListLogs))

	admin := func(fn http.HandlerFunc) http.Handler { return auth.RequireAdmin(fn) }
	r.Handle(http.MethodGet, "/api/admin/users", admin(h.ListUsers))
	r.Handle(http.MethodPost, "/api/admin/users", admin(h.CreateUser))
	r.Handle(http.MethodDelete, "/api/admin/users/{id}", admin(h.DeleteUser))
	r.Handle(http.MethodPost, "/api/admin/users/{id}/password", admin(h.AdminChangePassword))
	r.Handle(http.MethodPost, "/api/admin/users/{id}/library-path", admin(h.UpdateLibraryPath))
	r.Handle(http.MethodGet, "/api/admin/config", admin(h.ListConfig))
	r.Handle(http.MethodPost, "/api/admin/config", admin(h.UpdateConfig))
	r.Handle(http.MethodGet, "/api/admin/config/{key}", admin(h.GetConfig))
	r.Handle(http.MethodGet, "/api/admin/system", admin(h.SystemInfo))

	return r
}

// identity pulls the authenticated caller out of the context. The auth
// middleware guarantees it is present on every protected route.
func identity(r *http.Request) *auth.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}
