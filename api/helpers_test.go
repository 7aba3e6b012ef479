package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sholas-io/onboard/api"
	"github.com/sholas-io/onboard/pkg/models"
)

const testSecret = "testsecret"

// newProtectedRouter builds a router with the JWT middleware installed, the
// way SetupRoutes guards the /v1 tree.
func newProtectedRouter(register func(r *mux.Router)) http.Handler {
	r := mux.NewRouter()
	r.Use(api.JWTAuthMiddlewareWithSecret(testSecret))
	register(r)
	return r
}

// newAdminRouter additionally requires the admin role, like the /v1/admin
// subtree.
func newAdminRouter(register func(r *mux.Router)) http.Handler {
	r := mux.NewRouter()
	r.Use(api.JWTAuthMiddlewareWithSecret(testSecret))
	r.Use(api.RequireRole(models.RoleAdmin))
	register(r)
	return r
}

func signToken(t *testing.T, userID, email string, role models.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// doJSON runs one request through a handler, optionally authenticated.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
}
