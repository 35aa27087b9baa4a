package api

import (
	"crypto/subtle"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/khawasu/cloud-bridge/internal/alice"
	"github.com/khawasu/cloud-bridge/internal/auth"
)

//go:embed templates/login.html
var templatesFS embed.FS

var loginTemplate = template.Must(template.ParseFS(templatesFS, "templates/login.html"))

// loginPage carries the authorize parameters through the login form so
// the POST sees the same OAuth context the GET was opened with.
type loginPage struct {
	State       string
	ClientID    string
	RedirectURI string
	Error       string
}

// handleAuthorizeForm renders the account-linking login page.
func (s *Server) handleAuthorizeForm(w http.ResponseWriter, r *http.Request) {
	page, ok := s.authorizeParams(w, r)
	if !ok {
		return
	}
	s.renderLogin(w, http.StatusOK, page)
}

// handleAuthorizeSubmit verifies the submitted credentials and
// redirects back to the platform with a fresh authorization code.
func (s *Server) handleAuthorizeSubmit(w http.ResponseWriter, r *http.Request) {
	page, ok := s.authorizeParams(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	code, err := s.auth.IssueCode(r.Context(), username, password, page.State)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			page.Error = "Wrong username or password"
			s.renderLogin(w, http.StatusUnauthorized, page)
			return
		}
		s.logger.Error("issuing authorization code failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	redirect, err := url.Parse(page.RedirectURI)
	if err != nil {
		writeBadRequest(w, "invalid redirect_uri")
		return
	}
	q := redirect.Query()
	q.Set("state", page.State)
	q.Set("code", code)
	q.Set("client_id", page.ClientID)
	redirect.RawQuery = q.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// authorizeParams validates the OAuth query parameters shared by the
// GET and POST sides of the authorize endpoint.
func (s *Server) authorizeParams(w http.ResponseWriter, r *http.Request) (loginPage, bool) {
	q := r.URL.Query()
	page := loginPage{
		State:       q.Get("state"),
		ClientID:    q.Get("client_id"),
		RedirectURI: q.Get("redirect_uri"),
	}

	if q.Get("response_type") != "code" {
		writeBadRequest(w, "unsupported response_type")
		return page, false
	}
	if subtle.ConstantTimeCompare([]byte(page.ClientID), []byte(s.oauth.ClientID)) != 1 {
		writeForbidden(w, "unknown client_id")
		return page, false
	}
	if page.RedirectURI == "" {
		writeBadRequest(w, "missing redirect_uri")
		return page, false
	}
	return page, true
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, page loginPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginTemplate.Execute(w, page); err != nil {
		s.logger.Error("rendering login page failed", "error", err)
	}
}

// handleToken exchanges an authorization code for an access token.
// The platform authenticates itself with the client credentials.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return
	}

	clientID := r.PostFormValue("client_id")
	clientSecret := r.PostFormValue("client_secret")
	idOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(s.oauth.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.oauth.ClientSecret)) == 1
	if !idOK || !secretOK {
		writeForbidden(w, "invalid client credentials")
		return
	}

	access, err := s.auth.ExchangeCode(r.Context(), r.PostFormValue("code"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenNotFound):
			writeForbidden(w, "unknown authorization code")
		case errors.Is(err, auth.ErrTokenExpired):
			writeForbidden(w, "authorization code expired")
		default:
			s.logger.Error("code exchange failed", "error", err)
			writeInternalError(w, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, alice.TokenResponse{AccessToken: access})
}
