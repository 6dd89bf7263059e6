package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/auth"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/pipeline"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/repositories"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
	tu "github.com/jefrecantuledesma/j3s-music-upload/internal/testing"
)

// fakeRunner simulates the downloaders by dropping a file into tempDir.
type fakeRunner struct {
	tempDir string
	fail    bool
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (*pipeline.Output, error) {
	if r.fail {
		return &pipeline.Output{ExitCode: 1}, fmt.Errorf("%w: %s blew up", shared.ErrExternalTool, name)
	}
	if name == "yt-dlp" || name == "spotdl" {
		if err := os.WriteFile(filepath.Join(r.tempDir, "track.opus"), []byte("audio"), 0o644); err != nil {
			return nil, err
		}
	}
	return &pipeline.Output{}, nil
}

type testServer struct {
	router     *BasicRouter
	runner     *fakeRunner
	users      *repositories.UserRepository
	jobs       *repositories.JobLogRepository
	cfg        *shared.Config
	adminToken string
	userToken  string
	userID     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := shared.DefaultConfig()
	root := t.TempDir()
	cfg.Paths.MusicDir = filepath.Join(root, "music")
	cfg.Paths.TempDir = filepath.Join(root, "tmp")
	cfg.Paths.FerricEnabled = false
	cfg.YouTube.YtdlpPath = "yt-dlp"
	cfg.Spotify.SpotdlPath = "spotdl"

	db := tu.NewTestDB(t)
	users := repositories.NewUserRepository(db)
	jobs := repositories.NewJobLogRepository(db)
	settings := repositories.NewSettingRepository(db)
	authenticator := auth.NewAuthenticator(cfg.Security)
	logger := shared.NewLogger(io.Discard)

	runner := &fakeRunner{tempDir: cfg.Paths.TempDir}
	pl := pipeline.New(pipeline.Options{
		Config:   cfg,
		Logger:   logger,
		Jobs:     jobs,
		Users:    users,
		Settings: settings,
		Runner:   runner,
	})

	h := NewHandlers(cfg, logger, authenticator, users, jobs, settings, pl)
	router := NewRouter(h, auth.NewLoginLimiter(100, 100))

	ts := &testServer{router: router, runner: runner, users: users, jobs: jobs, cfg: cfg}

	admin := tu.SeedUser(t, db, "admin", "correct horse", true)
	user := tu.SeedUser(t, db, "listener", "correct horse", false)
	ts.adminToken = ts.token(t, authenticator, admin)
	ts.userToken = ts.token(t, authenticator, user)
	ts.userID = user.ID

	return ts
}

func (ts *testServer) token(t *testing.T, a *auth.Authenticator, user *models.User) string {
	t.Helper()
	token, err := a.CreateToken(user)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	return token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	t.Run("valid credentials return a token", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/login", "",
			models.LoginRequest{Username: "listener", Password: "correct horse"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeBody[models.LoginResponse](t, rec)
		if resp.Token == "" || resp.Username != "listener" || resp.IsAdmin {
			t.Errorf("unexpected login response: %+v", resp)
		}
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		wrong := ts.request(t, http.MethodPost, "/api/login", "",
			models.LoginRequest{Username: "listener", Password: "nope"})
		unknown := ts.request(t, http.MethodPost, "/api/login", "",
			models.LoginRequest{Username: "ghost", Password: "nope"})

		if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401/401, got %d/%d", wrong.Code, unknown.Code)
		}
		if wrong.Body.String() != unknown.Body.String() {
			t.Errorf("responses differ: %q vs %q", wrong.Body.String(), unknown.Body.String())
		}
	})

	t.Run("protected routes reject missing tokens", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/api/youtube", "", models.DownloadRequest{URL: "https://youtu.be/x"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestDownloadEndpoints(t *testing.T) {
	t.Run("youtube download lands in the library", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodPost, "/api/youtube", ts.userToken,
			models.DownloadRequest{URL: "https://youtu.be/abc123"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeBody[models.UploadResponse](t, rec)
		if !resp.Success || resp.LogID == nil || resp.SessionID == "" {
			t.Errorf("unexpected response: %+v", resp)
		}
		tu.AssertFileExists(t, filepath.Join(ts.cfg.Paths.MusicDir, "track.opus"))
	})

	t.Run("invalid url is a 400 with no job row", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodPost, "/api/youtube", ts.userToken,
			models.DownloadRequest{URL: "https://evil.example/x"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		logs, _ := ts.jobs.List("", 10)
		if len(logs) != 0 {
			t.Errorf("expected no job rows, got %d", len(logs))
		}
	})

	t.Run("downloader failure is a 500 with a failed job row", func(t *testing.T) {
		ts := newTestServer(t)
		ts.runner.fail = true

		rec := ts.request(t, http.MethodPost, "/api/spotify", ts.userToken,
			models.DownloadRequest{URL: "https://open.spotify.com/track/abc"})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
		}
		logs, _ := ts.jobs.List("", 10)
		if len(logs) != 1 || logs[0].Status != models.StatusFailed {
			t.Errorf("expected one failed job, got %+v", logs)
		}
	})

	t.Run("disabled platform is a 403", func(t *testing.T) {
		ts := newTestServer(t)
		ts.cfg.Spotify.Enabled = false

		rec := ts.request(t, http.MethodPost, "/api/spotify", ts.userToken,
			models.DownloadRequest{URL: "https://open.spotify.com/track/abc"})
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})
}

func TestUploadEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "song.mp3")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte("audio bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Authorization", "Bearer "+ts.userToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	tu.AssertFileExists(t, filepath.Join(ts.cfg.Paths.MusicDir, "song.mp3"))

	logs, _ := ts.jobs.List("", 10)
	if len(logs) != 1 || logs[0].Kind != models.KindFile || logs[0].Status != models.StatusCompleted {
		t.Errorf("unexpected job rows: %+v", logs)
	}
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("non-admin is forbidden", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.request(t, http.MethodGet, "/api/admin/users", ts.userToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("create list delete user", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodPost, "/api/admin/users", ts.adminToken,
			models.CreateUserRequest{Username: "newbie", Password: "longenough"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		created := decodeBody[models.User](t, rec)
		if strings.Contains(rec.Body.String(), "password") {
			t.Error("response leaked password material")
		}

		rec = ts.request(t, http.MethodGet, "/api/admin/users", ts.adminToken, nil)
		listed := decodeBody[[]models.User](t, rec)
		if len(listed) != 3 {
			t.Errorf("expected 3 users, got %d", len(listed))
		}

		rec = ts.request(t, http.MethodDelete, "/api/admin/users/"+created.ID, ts.adminToken, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.request(t, http.MethodPost, "/api/admin/users", ts.adminToken,
			models.CreateUserRequest{Username: "listener", Password: "longenough"})
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("short credentials are rejected", func(t *testing.T) {
		ts := newTestServer(t)
		for _, req := range []models.CreateUserRequest{
			{Username: "ab", Password: "longenough"},
			{Username: "valid", Password: "short"},
		} {
			rec := ts.request(t, http.MethodPost, "/api/admin/users", ts.adminToken, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400 for %+v, got %d", req, rec.Code)
			}
		}
	})

	t.Run("admin cannot delete themselves", func(t *testing.T) {
		ts := newTestServer(t)
		admin, err := ts.users.GetByUsername("admin")
		if err != nil {
			t.Fatalf("failed to load admin: %v", err)
		}
		rec := ts.request(t, http.MethodDelete, "/api/admin/users/"+admin.ID, ts.adminToken, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("library path update rejects traversal", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.request(t, http.MethodPost, "/api/admin/users/"+ts.userID+"/library-path", ts.adminToken,
			models.UpdateLibraryPathRequest{LibraryPath: "/srv/../etc"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		rec = ts.request(t, http.MethodPost, "/api/admin/users/"+ts.userID+"/library-path", ts.adminToken,
			models.UpdateLibraryPathRequest{LibraryPath: "/srv/music/listener"})
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("config round trip", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodGet, "/api/admin/config/ferric_enabled", ts.adminToken, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 before set, got %d", rec.Code)
		}

		rec = ts.request(t, http.MethodPost, "/api/admin/config", ts.adminToken,
			models.UpdateSettingRequest{Key: "ferric_enabled", Value: "true"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = ts.request(t, http.MethodGet, "/api/admin/system", ts.adminToken, nil)
		info := decodeBody[map[string]any](t, rec)
		if info["ferric_enabled"] != true {
			t.Errorf("expected settings row to win, got %v", info)
		}
	})
}

func TestLogScoping(t *testing.T) {
	ts := newTestServer(t)

	// One job per account.
	if rec := ts.request(t, http.MethodPost, "/api/youtube", ts.userToken,
		models.DownloadRequest{URL: "https://youtu.be/one"}); rec.Code != http.StatusOK {
		t.Fatalf("user download failed: %s", rec.Body.String())
	}
	if rec := ts.request(t, http.MethodPost, "/api/youtube", ts.adminToken,
		models.DownloadRequest{URL: "https://youtu.be/two"}); rec.Code != http.StatusOK {
		t.Fatalf("admin download failed: %s", rec.Body.String())
	}

	rec := ts.request(t, http.MethodGet, "/api/admin/logs", ts.userToken, nil)
	own := decodeBody[[]models.JobLog](t, rec)
	if len(own) != 1 || own[0].UserID != ts.userID {
		t.Errorf("expected only the caller's log, got %+v", own)
	}

	rec = ts.request(t, http.MethodGet, "/api/admin/logs", ts.adminToken, nil)
	all := decodeBody[[]models.JobLog](t, rec)
	if len(all) != 2 {
		t.Errorf("expected all logs for admin, got %d", len(all))
	}
}

func TestAccountSelfService(t *testing.T) {
	t.Run("password rotation requires the old password", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodPost, "/api/user/change-password", ts.userToken,
			models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "brand new pass"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}

		rec = ts.request(t, http.MethodPost, "/api/user/change-password", ts.userToken,
			models.ChangePasswordRequest{OldPassword: "correct horse", NewPassword: "brand new pass"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = ts.request(t, http.MethodPost, "/api/login", "",
			models.LoginRequest{Username: "listener", Password: "brand new pass"})
		if rec.Code != http.StatusOK {
			t.Errorf("expected login with new password, got %d", rec.Code)
		}
	})

	t.Run("username change survives a relisting", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.request(t, http.MethodPost, "/api/user/change-username", ts.userToken,
			models.UpdateUsernameRequest{NewUsername: "renamed"})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		if _, err := ts.users.GetByUsername("renamed"); err != nil {
			t.Errorf("expected renamed account: %v", err)
		}
	})

	t.Run("directories reflect the override", func(t *testing.T) {
		ts := newTestServer(t)
		if err := ts.users.UpdateLibraryPath(ts.userID, "/srv/music/corner"); err != nil {
			t.Fatalf("failed to set override: %v", err)
		}

		rec := ts.request(t, http.MethodGet, "/api/user/directories", ts.userToken, nil)
		dirs := decodeBody[map[string]any](t, rec)
		if dirs["music_dir"] != "/srv/music/corner" {
			t.Errorf("expected override music dir, got %v", dirs)
		}
		if dirs["temp_dir"] != "/srv/music/corner/tmp" {
			t.Errorf("expected override temp dir, got %v", dirs)
		}
	})
}

func TestProgressStream(t *testing.T) {
	ts := newTestServer(t)

	t.Run("unknown session closes immediately", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/api/progress/nope", ts.userToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}
	})
}
