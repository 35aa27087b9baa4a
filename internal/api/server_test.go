package api

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/khawasu/cloud-bridge/internal/auth"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/config"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/logging"
	"github.com/khawasu/cloud-bridge/internal/khawasu"
	"github.com/khawasu/cloud-bridge/internal/translate"
)

// fakeDriver serves a small fixed mesh for handler tests.
type fakeDriver struct {
	execErr  error
	executed []string
	values   map[string][]byte
}

func (f *fakeDriver) ListDevices(ctx context.Context) ([]khawasu.RawDevice, error) {
	return []khawasu.RawDevice{
		{
			Address: "0.12",
			Name:    "Bedroom lamp",
			Group:   "Bedroom",
			Class:   khawasu.ClassLed1Dim,
			Actions: []khawasu.Action{
				{Name: "power", Type: khawasu.ActionRelay},
				{Name: "level", Type: khawasu.ActionRange},
			},
		},
		{
			Address: "0.33",
			Name:    "Climate",
			Class:   khawasu.ClassTempHumSensor,
			Actions: []khawasu.Action{
				{Name: "temperature", Type: khawasu.ActionTemperature},
			},
		},
	}, nil
}

func (f *fakeDriver) Execute(ctx context.Context, address, action string, data []byte) error {
	if f.execErr != nil {
		return f.execErr
	}
	f.executed = append(f.executed, address+"/"+action)
	return nil
}

func (f *fakeDriver) ActionGet(ctx context.Context, address, action string) ([]byte, error) {
	return f.values[address+"/"+action], nil
}

// testServer wires a full server against a temp database and the fake
// driver, returning the server plus its auth service for seeding.
func testServer(t *testing.T, driver *fakeDriver) (*Server, *auth.Service) {
	t.Helper()

	f, err := os.CreateTemp("", "api-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE TABLE tokens (
			token_hash TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			kind TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			issued_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := auth.NewUserRepository(db)
	svc := auth.NewService(users, auth.NewTokenRepository(db), 8, 32, 10*time.Second, quiet)

	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if err := users.Create(context.Background(), &auth.User{Username: "alice", PasswordHash: hash}); err != nil {
		t.Fatalf("creating test user: %v", err)
	}

	translator := translate.New(driver, nil, quiet)
	directory := translate.NewDirectory(driver, time.Minute, quiet)

	srv, err := New(Deps{
		Config: config.APIConfig{Host: "127.0.0.1", Port: 0},
		OAuth: config.OAuthConfig{
			ClientID:     "alice-skill",
			ClientSecret: "sekrit",
		},
		Logger:     &logging.Logger{Logger: quiet},
		Auth:       svc,
		Directory:  directory,
		Translator: translator,
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, svc
}

// linkAccount walks the full OAuth flow and returns an access token.
func linkAccount(t *testing.T, handler http.Handler) string {
	t.Helper()

	form := url.Values{"username": {"alice"}, "password": {"hunter22"}}
	authURL := "/auth/?response_type=code&state=st&client_id=alice-skill&redirect_uri=" +
		url.QueryEscape("https://social.yandex.net/broker/redirect")
	req := httptest.NewRequest(http.MethodPost, authURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("authorize status = %d, body %s", rec.Code, rec.Body.String())
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parsing redirect: %v", err)
	}
	code := location.Query().Get("code")
	if code == "" {
		t.Fatalf("no code in redirect %q", location)
	}

	tokenForm := url.Values{
		"client_id":     {"alice-skill"},
		"client_secret": {"sekrit"},
		"code":          {code},
	}
	req = httptest.NewRequest(http.MethodPost, "/token/", strings.NewReader(tokenForm.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("token status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding token response: %v", err)
	}
	if len(body.AccessToken) != 32 {
		t.Fatalf("access token length = %d", len(body.AccessToken))
	}
	return body.AccessToken
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func floatPayload(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}
