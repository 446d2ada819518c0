package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unihome/unihome-api/internal/api/middleware"
	"github.com/unihome/unihome-api/internal/core/domain"
	"github.com/unihome/unihome-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, attempt ports.LoginAttempt) (*domain.Identity, error)
	logouts []*domain.Identity
}

func (s *stubAuthService) Login(ctx context.Context, attempt ports.LoginAttempt) (*domain.Identity, error) {
	return s.loginFn(ctx, attempt)
}

func (s *stubAuthService) Logout(_ context.Context, identity *domain.Identity, _, _ string) {
	s.logouts = append(s.logouts, identity)
}

type stubSessionStore struct {
	created    *domain.Identity
	current    *domain.Identity
	createErr  error
	readErr    error
	destroyErr error
	destroyed  int
}

func (s *stubSessionStore) Create(_ context.Context, _ http.ResponseWriter, _ *http.Request, identity *domain.Identity) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = identity
	s.current = identity
	return nil
}

func (s *stubSessionStore) Read(*http.Request) (*domain.Identity, error) {
	return s.current, s.readErr
}

func (s *stubSessionStore) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	if s.destroyErr != nil {
		return s.destroyErr
	}
	s.destroyed++
	s.current = nil
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func studentIdentity() *domain.Identity {
	return &domain.Identity{
		ID:             "stu-1",
		Email:          "student@uni.com",
		Role:           domain.RoleStudent,
		FirstName:      "Alex",
		LastName:       "Rivera",
		UniversityName: "Metropolitan State University",
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		loginFn: func(_ context.Context, attempt ports.LoginAttempt) (*domain.Identity, error) {
			if attempt.Email != "student@uni.com" || attempt.Password != "123456789" {
				t.Fatalf("unexpected args: %+v", attempt)
			}
			return studentIdentity(), nil
		},
	}
	store := &stubSessionStore{}
	h := NewAuthHandler(auth, store, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"student@uni.com","password":"123456789"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode(t, rec)
	if resp["success"] != true || resp["role"] != "student" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "student@uni.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	profile, ok := resp["profile"].(map[string]any)
	if !ok || profile["first_name"] != "Alex" {
		t.Fatalf("unexpected profile payload: %+v", resp["profile"])
	}
	if store.created == nil || store.created.ID != "stu-1" {
		t.Fatalf("session was not created")
	}
}

func TestAuthHandler_Login_DefaultsRoleToStudent(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		loginFn: func(context.Context, ports.LoginAttempt) (*domain.Identity, error) {
			return &domain.Identity{ID: "x", Email: "x@uni.com"}, nil
		},
	}
	h := NewAuthHandler(auth, &stubSessionStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"x@uni.com","password":"p"}`), rec)
	_ = h.Login(c)

	if resp := decode(t, rec); resp["role"] != "student" {
		t.Fatalf("expected role to default to student, got %v", resp["role"])
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	cases := map[string]string{
		`{"password":"123456789"}`:                   "email is required",
		`{"email":"student@uni.com"}`:                "password is required",
		`{"email":"","password":""}`:                 "email is required; password is required",
		`{"email":"student@uni.com","password":""}`: "password is required",
	}
	for body, want := range cases {
		e := newEcho()
		auth := &stubAuthService{
			loginFn: func(context.Context, ports.LoginAttempt) (*domain.Identity, error) {
				t.Fatalf("should not be called")
				return nil, nil
			},
		}
		h := NewAuthHandler(auth, &stubSessionStore{}, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", body), rec)
		_ = h.Login(c)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
		if resp := decode(t, rec); resp["error"] != want {
			t.Fatalf("%s: expected %q, got %v", body, want, resp["error"])
		}
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		loginFn: func(context.Context, ports.LoginAttempt) (*domain.Identity, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(auth, &stubSessionStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", "{"), rec)
	_ = h.Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_FailuresShareOneMessage(t *testing.T) {
	var bodies []string
	for _, failure := range []error{domain.ErrInvalidCredentials, domain.ErrUserNotFound} {
		e := newEcho()
		auth := &stubAuthService{
			loginFn: func(context.Context, ports.LoginAttempt) (*domain.Identity, error) {
				return nil, failure
			},
		}
		store := &stubSessionStore{}
		h := NewAuthHandler(auth, store, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"student@uni.com","password":"wrong"}`), rec)
		_ = h.Login(c)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", failure, rec.Code)
		}
		if store.created != nil {
			t.Fatalf("%v: session must not be created", failure)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("unknown email and wrong password must be indistinguishable:\n%s\n%s", bodies[0], bodies[1])
	}
}

func TestAuthHandler_Login_UnexpectedErrors(t *testing.T) {
	cases := []struct {
		name  string
		auth  error
		store error
	}{
		{"directory down", errors.New("mongo: no reachable servers"), nil},
		{"session store down", nil, errors.New("redis: connection refused")},
	}
	for _, tc := range cases {
		e := newEcho()
		auth := &stubAuthService{
			loginFn: func(context.Context, ports.LoginAttempt) (*domain.Identity, error) {
				if tc.auth != nil {
					return nil, tc.auth
				}
				return studentIdentity(), nil
			},
		}
		h := NewAuthHandler(auth, &stubSessionStore{createErr: tc.store}, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"student@uni.com","password":"123456789"}`), rec)
		_ = h.Login(c)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", tc.name, rec.Code)
		}
		if resp := decode(t, rec); resp["error"] != "internal server error" {
			t.Fatalf("%s: expected generic message, got %v", tc.name, resp["error"])
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	for _, current := range []*domain.Identity{studentIdentity(), nil} {
		e := newEcho()
		auth := &stubAuthService{}
		store := &stubSessionStore{current: current}
		h := NewAuthHandler(auth, store, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)

		if err := h.Logout(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp := decode(t, rec); resp["success"] != true {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if store.destroyed != 1 || len(auth.logouts) != 1 {
			t.Fatalf("expected one destroy and one audit, got %d/%d", store.destroyed, len(auth.logouts))
		}
	}
}

func TestAuthHandler_Logout_UsesGuardIdentity(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubSessionStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)
	c.Set(middleware.ContextIdentityKey, studentIdentity())
	_ = h.Logout(c)

	if len(auth.logouts) != 1 || auth.logouts[0] == nil || auth.logouts[0].ID != "stu-1" {
		t.Fatalf("expected logout to be attributed to stu-1, got %+v", auth.logouts)
	}
}

func TestAuthHandler_Logout_ReadFailureIsLogged(t *testing.T) {
	e := newEcho()
	var logs bytes.Buffer
	auth := &stubAuthService{}
	store := &stubSessionStore{readErr: errors.New("redis down")}
	h := NewAuthHandler(auth, store, zerolog.New(&logs))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK || store.destroyed != 1 {
		t.Fatalf("expected logout to proceed, got %d (destroyed %d)", rec.Code, store.destroyed)
	}
	if len(auth.logouts) != 1 || auth.logouts[0] != nil {
		t.Fatalf("expected anonymous logout audit, got %+v", auth.logouts)
	}
	if !strings.Contains(logs.String(), `"level":"warn"`) || !strings.Contains(logs.String(), "redis down") {
		t.Fatalf("expected warn log with cause, got %q", logs.String())
	}
}

func TestAuthHandler_Logout_StoreFailure(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubSessionStore{destroyErr: errors.New("redis down")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)
	_ = h.Logout(c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	e := newEcho()
	store := &stubSessionStore{current: studentIdentity()}
	h := NewAuthHandler(&stubAuthService{}, store, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/user", nil), rec)
	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	user, ok := decode(t, rec)["user"].(map[string]any)
	if rec.Code != http.StatusOK || !ok || user["id"] != "stu-1" {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_CurrentUser_NoSession(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubSessionStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/user", nil), rec)
	_ = h.CurrentUser(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if v, present := resp["user"]; !present || v != nil {
		t.Fatalf("expected explicit user:null, got %s", rec.Body.String())
	}
}

func TestAuthHandler_CurrentUser_StoreFailure(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubSessionStore{readErr: errors.New("redis down")}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/user", nil), rec)
	_ = h.CurrentUser(c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if v, present := resp["user"]; !present || v != nil {
		t.Fatalf("expected user:null alongside the error, got %s", rec.Body.String())
	}
	if resp["error"] != "internal server error" {
		t.Fatalf("expected generic message, got %v", resp["error"])
	}
}
