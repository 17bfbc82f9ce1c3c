package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinematch/internal/config"
	"github.com/user/cinematch/internal/handler"
	"github.com/user/cinematch/internal/repository"
	"github.com/user/cinematch/internal/router"
	"github.com/user/cinematch/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

// newTestApp 启动完整的 gin 引擎，TMDB 由 provider 模拟
func newTestApp(t *testing.T, provider http.Handler, tweak func(*config.Config)) *testApp {
	t.Helper()

	upstream := httptest.NewServer(provider)
	t.Cleanup(upstream.Close)

	db, err := repository.InitDB(filepath.Join(t.TempDir(), "watchlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Env:             "test",
		AppSecret:       "test-session-secret",
		DatabaseURL:     "unused",
		TMDBAPIKey:      "test-key",
		TMDBBaseURL:     upstream.URL + "/3",
		ProviderTimeout: time.Second,
		SiteName:        "CineMatch",
	}
	if tweak != nil {
		tweak(cfg)
	}

	h := handler.NewHandler(repository.NewRepositories(db), cfg, utils.NewHTTPClient(cfg.ProviderTimeout))
	server := httptest.NewServer(router.NewEngine(h))
	t.Cleanup(server.Close)

	return &testApp{t: t, server: server, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) do(client *http.Client, method, path string, form url.Values, header http.Header) (int, string) {
	a.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(a.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, string(raw)
}

func (a *testApp) get(path string) (int, string) {
	return a.do(a.client, http.MethodGet, path, nil, nil)
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func providerMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/3/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"id": 1, "title": "Scream", "genre_ids": [27], "popularity": 99.1}]}`))
	})
	mux.HandleFunc("/3/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"id": 2, "title": "Dune", "vote_average": 8.1}]}`))
	})
	mux.HandleFunc("/3/movie/top_rated", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message": "Internal provider stack trace"}`, http.StatusBadGateway)
	})
	mux.HandleFunc("/3/movie/550", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 550, "title": "Fight Club", "vote_count": 30000}`))
	})
	mux.HandleFunc("/3/movie/550/credits", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cast": [{"name": "Edward Norton", "character": "Narrator", "profile_path": "/n.jpg"}]}`))
	})
	mux.HandleFunc("/3/movie/550/videos", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"key": "abc123", "site": "YouTube", "type": "Trailer"}]}`))
	})
	mux.HandleFunc("/3/movie/551/videos", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"key": "t1", "site": "YouTube", "type": "Teaser"}]}`))
	})
	return mux
}

func TestSessionScenario(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)

	_, body := app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": false}`, body)

	status, body := app.do(app.client, http.MethodPost, "/register", credentials("ellen", "nostromo"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success": true, "message": "Registration successful!"}`, body)

	status, body = app.do(app.client, http.MethodPost, "/login", credentials("ellen", "nostromo"), nil)
	assert.Equal(t, http.StatusOK, status)
	var login struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	assert.True(t, login.Success)
	assert.Equal(t, "Welcome ellen!", login.Message)
	assert.NotEmpty(t, login.Token)

	_, body = app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": true}`, body)

	_, body = app.get("/logout")
	assert.JSONEq(t, `{"success": true, "message": "Logged out"}`, body)

	_, body = app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": false}`, body)

	// 重复登出
	status, _ = app.get("/logout")
	assert.Equal(t, http.StatusOK, status)
}

func TestBearerTokenSession(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)
	app.do(app.client, http.MethodPost, "/register", credentials("dallas", "mother"), nil)

	_, body := app.do(app.client, http.MethodPost, "/login", credentials("dallas", "mother"), nil)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &login))

	apiClient := &http.Client{}
	auth := http.Header{"Authorization": {"Bearer " + login.Token}}

	_, body = app.do(apiClient, http.MethodGet, "/login-check", nil, auth)
	assert.JSONEq(t, `{"logged_in": true}`, body)

	app.do(apiClient, http.MethodGet, "/logout", nil, auth)

	_, body = app.do(apiClient, http.MethodGet, "/login-check", nil, auth)
	assert.JSONEq(t, `{"logged_in": false}`, body)
	_, body = app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": false}`, body)
}

func TestStaleCookieFallsBackToBearerToken(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)
	apiClient := &http.Client{}

	loginToken := func(client *http.Client, username string) string {
		app.do(client, http.MethodPost, "/register", credentials(username, "mother"), nil)
		_, body := app.do(client, http.MethodPost, "/login", credentials(username, "mother"), nil)
		var login struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &login))
		require.NotEmpty(t, login.Token)
		return login.Token
	}

	// Cookie 中的令牌被其他客户端注销
	stale := loginToken(app.client, "parker")
	app.do(apiClient, http.MethodGet, "/logout", nil, http.Header{"Authorization": {"Bearer " + stale}})
	_, body := app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": false}`, body)

	fresh := loginToken(newClient(t), "brett")
	auth := http.Header{"Authorization": {"Bearer " + fresh}}

	_, body = app.do(app.client, http.MethodGet, "/login-check", nil, auth)
	assert.JSONEq(t, `{"logged_in": true}`, body)

	// 登出注销的是通过校验的 Bearer 令牌
	app.do(app.client, http.MethodGet, "/logout", nil, auth)
	_, body = app.do(apiClient, http.MethodGet, "/login-check", nil, auth)
	assert.JSONEq(t, `{"logged_in": false}`, body)
}

func TestLongPasswordRegistersAndLogsIn(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)
	password := strings.Repeat("p", 73)

	status, body := app.do(app.client, http.MethodPost, "/register", credentials("hicks", password), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success": true, "message": "Registration successful!"}`, body)

	status, body = app.do(app.client, http.MethodPost, "/login", credentials("hicks", password[:72]), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invalid credentials")

	status, body = app.do(app.client, http.MethodPost, "/login", credentials("hicks", password), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome hicks!")

	_, body = app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": true}`, body)
}

func TestAuthBusinessErrors(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)
	app.do(app.client, http.MethodPost, "/register", credentials("kane", "egg"), nil)

	status, body := app.do(app.client, http.MethodPost, "/register", credentials("kane", "other"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success": false, "message": "Username already exists"}`, body)

	wrongStatus, wrongBody := app.do(app.client, http.MethodPost, "/login", credentials("kane", "chestburster"), nil)
	unknownStatus, unknownBody := app.do(app.client, http.MethodPost, "/login", credentials("ash", "egg"), nil)
	assert.Equal(t, http.StatusOK, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.JSONEq(t, `{"success": false, "message": "Invalid credentials"}`, wrongBody)
	assert.JSONEq(t, wrongBody, unknownBody)

	_, body = app.get("/login-check")
	assert.JSONEq(t, `{"logged_in": false}`, body)

	status, body = app.do(app.client, http.MethodPost, "/register", url.Values{"username": {"lambert"}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, `"success":false`)
}

func TestWatchlistEndpoints(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)

	_, body := app.get("/watchlist")
	assert.JSONEq(t, `[]`, body)

	status, body := app.do(app.client, http.MethodPost, "/watchlist/550", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message": "Movie added", "movie_id": 550}`, body)

	status, body = app.do(app.client, http.MethodPost, "/watchlist/550", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message": "Already in watchlist", "movie_id": 550}`, body)

	app.do(app.client, http.MethodPost, "/watchlist/13", nil, nil)

	_, body = app.get("/watchlist")
	var ids []int
	require.NoError(t, json.Unmarshal([]byte(body), &ids))
	assert.ElementsMatch(t, []int{550, 13}, ids)

	status, body = app.do(app.client, http.MethodDelete, "/watchlist/550", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message": "Movie removed", "movie_id": 550}`, body)

	status, body = app.do(app.client, http.MethodDelete, "/watchlist/550", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message": "Movie not found"}`, body)

	status, _ = app.do(app.client, http.MethodPost, "/watchlist/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body = app.get("/watchlist")
	assert.JSONEq(t, `[13]`, body)
}

func TestMovieListEndpoints(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)

	status, body := app.get("/recommendations/HORROR?page=2")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id": 1, "title": "Scream", "poster_path": null, "vote_average": 0, "genre_ids": [27]}]`, body)

	status, body = app.get("/recommendations/not-a-genre")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error": "Genre 'not-a-genre' not found"}`, body)

	status, body = app.get("/trending?page=zero")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id": 2, "title": "Dune", "poster_path": null, "vote_average": 8.1, "genre_ids": []}]`, body)

	status, body = app.get("/new-releases")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Scream")

	status, body = app.get("/top-rated")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error": "Failed to fetch top rated movies"}`, body)
	assert.NotContains(t, body, "stack trace")
}

func TestPageIsForwardedAsGiven(t *testing.T) {
	pages := make(chan string, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("/3/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		pages <- r.URL.Query().Get("page")
		w.Write([]byte(`{"results": []}`))
	})
	app := newTestApp(t, mux, nil)

	for _, tc := range []struct {
		query string
		want  string
	}{
		{"", "1"},
		{"?page=0", "0"},
		{"?page=-2", "-2"},
		{"?page=7", "7"},
	} {
		status, body := app.get("/trending" + tc.query)
		assert.Equal(t, http.StatusOK, status, tc.query)
		assert.JSONEq(t, `[]`, body)
		assert.Equal(t, tc.want, <-pages, tc.query)
	}
}

func TestUpstreamTimeoutMapsToGatewayTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	app := newTestApp(t, slow, func(cfg *config.Config) {
		cfg.ProviderTimeout = 50 * time.Millisecond
	})

	status, body := app.get("/recommendations/comedy")
	assert.Equal(t, http.StatusGatewayTimeout, status)
	assert.JSONEq(t, `{"error": "TMDB request for genre 'comedy' timed out"}`, body)

	status, _ = app.get("/trending")
	assert.Equal(t, http.StatusGatewayTimeout, status)
}

func TestMovieDetailAndTrailer(t *testing.T) {
	app := newTestApp(t, providerMux(), nil)

	status, body := app.get("/movie/550")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"id": 550, "title": "Fight Club", "vote_count": 30000,
		"cast": [{"name": "Edward Norton", "character": "Narrator", "profile_path": "/n.jpg"}]
	}`, body)

	status, body = app.get("/movie/404")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error": "Failed to fetch movie details"}`, body)

	status, body = app.get("/movie/550/trailer")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"youtube_url": "https://www.youtube.com/watch?v=abc123"}`, body)

	status, body = app.get("/movie/551/trailer")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error": "No trailer found"}`, body)

	status, body = app.get("/movie/404/trailer")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error": "Failed to fetch trailer"}`, body)

	status, body = app.get("/movie/fight-club")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error": "Movie not found"}`, body)
}

func TestLandingAndHealth(t *testing.T) {
	app := newTestApp(t, providerMux(), func(cfg *config.Config) {
		cfg.TemplatesDir = "../../web/templates"
		cfg.StaticDir = "../../web/static"
	})

	status, body := app.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>CineMatch</title>")
	assert.Contains(t, body, `data-genre="horror"`)
	assert.Contains(t, body, `<span id="watchlist-count">0</span>`)

	status, _ = app.get("/static/app.js")
	assert.Equal(t, http.StatusOK, status)

	status, body = app.get("/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status": "ok"}`, body)

	status, body = app.get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, "cinematch_active_sessions")

	status, body = app.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error": "Resource not found"}`, body)
}
