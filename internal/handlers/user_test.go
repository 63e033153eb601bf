package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sylvain-bouchard/capture-api/internal/repo"
	"github.com/sylvain-bouchard/capture-api/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := service.NewUserService(repo.NewMemoryUserRepo(), nil)
	h := NewUserHandler(svc)
	r.POST("/users", h.Create)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.GetByID)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserLifecycleScenario(t *testing.T) {
	router := newTestRouter()

	// POST /users
	w := doRequest(router, http.MethodPost, "/users", map[string]string{
		"username": "jane",
		"password": "pw1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201, body: %s", w.Code, w.Body.String())
	}
	var created map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created["username"] != "jane" {
		t.Errorf("username = %v, want jane", created["username"])
	}
	id, ok := created["id"].(string)
	if !ok || id == "" {
		t.Fatalf("create response has no id: %v", created)
	}

	// GET /users/{id}
	w = doRequest(router, http.MethodGet, "/users/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	var fetched map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &fetched)
	if fetched["id"] != id || fetched["username"] != "jane" {
		t.Errorf("GET body = %v", fetched)
	}

	// DELETE /users/{id}
	w = doRequest(router, http.MethodDelete, "/users/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}

	// GET after delete: 404 with the stable message.
	w = doRequest(router, http.MethodGet, "/users/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want 404", w.Code)
	}
	var errBody map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &errBody)
	want := fmt.Sprintf("User with id %s not found", id)
	if errBody["error"] != want {
		t.Errorf("error = %q, want %q", errBody["error"], want)
	}

	// DELETE again: still 404, not a crash.
	w = doRequest(router, http.MethodDelete, "/users/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", w.Code)
	}
}

func TestResponsesNeverContainPasswordHash(t *testing.T) {
	router := newTestRouter()

	w := doRequest(router, http.MethodPost, "/users", map[string]string{
		"username": "jane",
		"password": "pw1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d", w.Code)
	}
	assertNoSensitiveFields(t, w.Body.Bytes())

	w = doRequest(router, http.MethodGet, "/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users status = %d", w.Code)
	}
	assertNoSensitiveFields(t, w.Body.Bytes())
}

func assertNoSensitiveFields(t *testing.T, body []byte) {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var check func(interface{})
	check = func(v interface{}) {
		switch vv := v.(type) {
		case map[string]interface{}:
			for k, inner := range vv {
				if k == "password_hash" || k == "password" {
					t.Errorf("response contains sensitive field %q", k)
				}
				check(inner)
			}
		case []interface{}:
			for _, inner := range vv {
				check(inner)
			}
		}
	}
	check(v)
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name string
		body interface{}
	}{
		{"missing username", map[string]string{"password": "pw"}},
		{"missing password", map[string]string{"username": "jane"}},
		{"empty body", map[string]string{}},
	}
	for _, tc := range cases {
		w := doRequest(router, http.MethodPost, "/users", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}
}

func TestCreateDuplicateUsernameConflict(t *testing.T) {
	router := newTestRouter()

	body := map[string]string{"username": "jane", "password": "pw1"}
	if w := doRequest(router, http.MethodPost, "/users", body); w.Code != http.StatusCreated {
		t.Fatalf("first POST status = %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, "/users", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate POST status = %d, want 409", w.Code)
	}
}

func TestListEmptyReturnsArray(t *testing.T) {
	router := newTestRouter()

	w := doRequest(router, http.MethodGet, "/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users status = %d", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Errorf("empty list body = %q, want []", got)
	}
}

func TestGetUnknownID(t *testing.T) {
	router := newTestRouter()

	w := doRequest(router, http.MethodGet, "/users/42", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var errBody map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &errBody)
	if errBody["error"] != "User with id 42 not found" {
		t.Errorf("error = %q", errBody["error"])
	}
}
