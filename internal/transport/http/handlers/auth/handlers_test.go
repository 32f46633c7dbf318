package authhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avd/internal/domain/audit"
	"avd/internal/domain/auth"
	"avd/internal/transport/http/middleware"
)

type fakeService struct {
	registered []string
}

func (f *fakeService) Login(_ context.Context, email, password string) (auth.LoginResult, error) {
	if email != "ana@uisa.com.br" || password != "segredo123" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	return auth.LoginResult{
		Token:     "jwt",
		ExpiresAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		User:      auth.User{ID: "u1", Email: email, Role: auth.RoleHR},
	}, nil
}

func (f *fakeService) Register(_ context.Context, email, _, _, _ string) (string, error) {
	if email == "dup@uisa.com.br" {
		return "", auth.ErrEmailTaken
	}
	f.registered = append(f.registered, email)
	return "u-new", nil
}

type recordingAuditor struct {
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

func newRouter(svc Service, auditor *recordingAuditor, user *auth.UserContext) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user != nil {
				req = req.WithContext(middleware.WithUser(req.Context(), *user))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(svc, auditor).RegisterRoutes(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	h := newRouter(&fakeService{}, &recordingAuditor{}, nil)

	rec := do(h, http.MethodPost, "/auth/login", `{"email":"ana@uisa.com.br","password":"segredo123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data auth.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "jwt", body.Data.Token)
	assert.Equal(t, auth.RoleHR, body.Data.User.Role)

	rec = do(h, http.MethodPost, "/auth/login", `{"email":"ana@uisa.com.br","password":"errada"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/auth/login", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestMeRequiresAuthentication(t *testing.T) {
	rec := do(newRouter(&fakeService{}, &recordingAuditor{}, nil), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := auth.UserContext{UserID: "u1", EmployeeID: "e1", Role: auth.RoleManager}
	rec = do(newRouter(&fakeService{}, &recordingAuditor{}, &user), http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.PermEvaluationsReview)
}

func TestRegisterIsAdminOnly(t *testing.T) {
	payload := `{"email":"novo@uisa.com.br","password":"segredo123","role":"colaborador"}`

	hr := auth.UserContext{UserID: "u1", Role: auth.RoleHR}
	rec := do(newRouter(&fakeService{}, &recordingAuditor{}, &hr), http.MethodPost, "/auth/users", payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	svc := &fakeService{}
	auditor := &recordingAuditor{}
	admin := auth.UserContext{UserID: "root", Role: auth.RoleAdmin}
	rec = do(newRouter(svc, auditor, &admin), http.MethodPost, "/auth/users", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"novo@uisa.com.br"}, svc.registered)
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, "root", auditor.entries[0].ActorID)
	assert.Equal(t, audit.ActionUserCreate, auditor.entries[0].Action)

	rec = do(newRouter(svc, auditor, &admin), http.MethodPost, "/auth/users", `{"email":"dup@uisa.com.br","password":"segredo123","role":"rh"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(newRouter(svc, auditor, &admin), http.MethodPost, "/auth/users", `{"email":"x@uisa.com.br","password":"segredo123","role":"dono"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
