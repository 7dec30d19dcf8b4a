package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkovs/accountd/internal/common"
	"github.com/avolkovs/accountd/internal/logging"
	"github.com/avolkovs/accountd/internal/server/auth"
	"github.com/avolkovs/accountd/internal/server/models"
	"github.com/avolkovs/accountd/internal/server/services"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeAccounts struct {
	registerID  string
	registerErr error

	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	list []*models.Account

	getResp *models.Account
	getErr  error

	updateErr error
	updated   *models.Account

	deactivateErr error
	deactivatedID string
}

func (f *fakeAccounts) Register(ctx context.Context, req *services.RegisterRequest) (string, error) {
	return f.registerID, f.registerErr
}
func (f *fakeAccounts) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeAccounts) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeAccounts) ListActive(ctx context.Context) []*models.Account {
	return f.list
}
func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.getResp, f.getErr
}
func (f *fakeAccounts) Update(ctx context.Context, account *models.Account) error {
	f.updated = account
	return f.updateErr
}
func (f *fakeAccounts) Deactivate(ctx context.Context, id string) error {
	f.deactivatedID = id
	return f.deactivateErr
}

// ---- helpers ----

const testSecret = "k"

func newTestServer(f *fakeAccounts) *Server {
	return &Server{
		address:   "127.0.0.1:0",
		accounts:  f,
		logger:    nopLogger{},
		jwtSecret: []byte(testSecret),
	}
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	return w
}

func validToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("a-1", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	w := doRequest(t, newTestServer(&fakeAccounts{}), http.MethodGet, "/ping", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestRegister_Created(t *testing.T) {
	s := newTestServer(&fakeAccounts{registerID: "a-1"})

	body := map[string]string{
		"username": "alice", "email": "alice@x.com",
		"password": "secret1", "confirmPassword": "secret1",
	}
	w := doRequest(t, s, http.MethodPost, "/api/register", body, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d, body %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["id"] != "a-1" {
		t.Fatalf("unexpected id: %q", resp["id"])
	}
}

func TestRegister_ValidationDetailRendered(t *testing.T) {
	ve := common.NewValidationError()
	ve.Add("Password", "Password must be at least 6 characters")
	s := newTestServer(&fakeAccounts{registerErr: ve})

	w := doRequest(t, s, http.MethodPost, "/api/register", map[string]string{"username": "alice"}, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Fields["Password"] == "" {
		t.Fatalf("expected field detail, got %s", w.Body.String())
	}
}

func TestRegister_DuplicateUsernameConflict(t *testing.T) {
	s := newTestServer(&fakeAccounts{registerErr: common.ErrDuplicateUsername})

	w := doRequest(t, s, http.MethodPost, "/api/register", map[string]string{"username": "alice"}, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestRegister_StorageFaultIsOpaque(t *testing.T) {
	s := newTestServer(&fakeAccounts{registerErr: common.ErrOperationFailed})

	w := doRequest(t, s, http.MethodPost, "/api/register", map[string]string{"username": "alice"}, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("db")) {
		t.Fatalf("storage detail leaked: %s", w.Body.String())
	}
}

func TestLogin_OK(t *testing.T) {
	s := newTestServer(&fakeAccounts{loginResp: &services.TokenPair{AccessToken: "a", RefreshToken: "r"}})

	w := doRequest(t, s, http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "secret1"}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AccessToken != "a" || resp.RefreshToken != "r" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(&fakeAccounts{loginErr: common.ErrInvalidCredentials})

	w := doRequest(t, s, http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestLogin_MissingBody(t *testing.T) {
	s := newTestServer(&fakeAccounts{})

	w := doRequest(t, s, http.MethodPost, "/api/login", map[string]string{"username": "alice"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestRefresh_Expired(t *testing.T) {
	s := newTestServer(&fakeAccounts{refreshErr: common.ErrRefreshTokenExpired})

	w := doRequest(t, s, http.MethodPost, "/api/token/refresh", map[string]string{"refreshToken": "r0"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestListAccounts_RequiresToken(t *testing.T) {
	s := newTestServer(&fakeAccounts{})

	w := doRequest(t, s, http.MethodGet, "/api/accounts", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestListAccounts_BadScheme(t *testing.T) {
	s := newTestServer(&fakeAccounts{})

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestListAccounts_OK(t *testing.T) {
	now := time.Now()
	s := newTestServer(&fakeAccounts{list: []*models.Account{
		{ID: "a-3", Username: "carol", CreatedAt: now, Active: true, PasswordHash: "digest"},
		{ID: "a-2", Username: "bob", CreatedAt: now.Add(-time.Hour), Active: true, PasswordHash: "digest"},
	}})

	w := doRequest(t, s, http.MethodGet, "/api/accounts", nil, validToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var resp []accountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "a-3" || resp[1].ID != "a-2" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("digest")) {
		t.Fatalf("credential hash leaked: %s", w.Body.String())
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	s := newTestServer(&fakeAccounts{getErr: common.ErrNotFound})

	w := doRequest(t, s, http.MethodGet, "/api/accounts/missing", nil, validToken(t))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestUpdateAccount_OK(t *testing.T) {
	f := &fakeAccounts{getResp: &models.Account{ID: "a-1", Username: "alice", Email: "alice@x.com", Active: true}}
	s := newTestServer(f)

	body := map[string]string{"username": "alice2", "email": "alice2@x.com", "firstName": "Alice"}
	w := doRequest(t, s, http.MethodPut, "/api/accounts/a-1", body, validToken(t))

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d, body %s", w.Code, w.Body.String())
	}
	if f.updated == nil || f.updated.Username != "alice2" || f.updated.FirstName != "Alice" {
		t.Fatalf("unexpected update: %+v", f.updated)
	}
}

func TestDeactivateAccount_NoContent(t *testing.T) {
	f := &fakeAccounts{}
	s := newTestServer(f)

	w := doRequest(t, s, http.MethodDelete, "/api/accounts/a-1", nil, validToken(t))
	if w.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if f.deactivatedID != "a-1" {
		t.Fatalf("unexpected id: %q", f.deactivatedID)
	}
}

func TestDeactivateAccount_NotFound(t *testing.T) {
	s := newTestServer(&fakeAccounts{deactivateErr: common.ErrNotFound})

	w := doRequest(t, s, http.MethodDelete, "/api/accounts/missing", nil, validToken(t))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}
