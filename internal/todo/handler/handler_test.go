package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/todofy/todofy/internal/todo"
	"github.com/todofy/todofy/internal/todo/repository"
	"github.com/todofy/todofy/pkg/middleware"
)

// stubToken and stubVerifier map bearer tokens straight to principals.
type stubToken struct {
	sub string
}

func (t *stubToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = map[string]interface{}{"sub": t.sub}
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type stubVerifier struct{}

func (s *stubVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	switch raw {
	case "token-a":
		return &stubToken{sub: "owner-a"}, nil
	case "token-b":
		return &stubToken{sub: "owner-b"}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func setupRouter(repo todo.Repository) *gin.Engine {
	g := gin.New()
	api := g.Group("/api/v1", middleware.AuthMiddleware(&stubVerifier{}))
	NewTodoHandler(repo).Register(api)
	return g
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func do(t *testing.T, g *gin.Engine, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestTodosRequireAuthentication(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/todos"},
		{http.MethodPost, "/api/v1/todos"},
		{http.MethodGet, "/api/v1/todos/507f1f77bcf86cd799439011"},
		{http.MethodPatch, "/api/v1/todos/507f1f77bcf86cd799439011"},
		{http.MethodDelete, "/api/v1/todos/507f1f77bcf86cd799439011"},
		{http.MethodPost, "/api/v1/todos/507f1f77bcf86cd799439011/toggle"},
		{http.MethodDelete, "/api/v1/todos/completed/all"},
	} {
		code, env := do(t, g, route.method, route.path, "", "")
		require.Equal(t, http.StatusUnauthorized, code, "%s %s", route.method, route.path)
		require.False(t, env.Success)
	}
}

func TestTodoLifecycle(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	// create
	code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"Buy milk","description":"2%"}`)
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Success)
	var created todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.ID, 24)
	require.False(t, created.Completed)
	require.Equal(t, "Buy milk", created.Title)

	// mark completed
	code, env = do(t, g, http.MethodPatch, "/api/v1/todos/"+created.ID, "token-a", `{"completed":true}`)
	require.Equal(t, http.StatusOK, code)
	var updated todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.True(t, updated.Completed)
	require.Equal(t, "Buy milk", updated.Title)
	require.Equal(t, "2%", updated.Description)

	// delete
	code, env = do(t, g, http.MethodDelete, "/api/v1/todos/"+created.ID, "token-a", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	require.Equal(t, "Todo deleted successfully", env.Message)

	// gone
	code, _ = do(t, g, http.MethodGet, "/api/v1/todos/"+created.ID, "token-a", "")
	require.Equal(t, http.StatusNotFound, code)
}

func TestTodoListScopedToPrincipal(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	for _, title := range []string{"first", "second"} {
		code, _ := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, code)
	}
	code, _ := do(t, g, http.MethodPost, "/api/v1/todos", "token-b", `{"title":"other"}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, g, http.MethodGet, "/api/v1/todos", "token-a", "")
	require.Equal(t, http.StatusOK, code)
	var list []todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	// most recent first
	require.Equal(t, "second", list[0].Title)
	require.Equal(t, "first", list[1].Title)
}

func TestTodoForeignOwnerLooksAbsent(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"private"}`)
	require.Equal(t, http.StatusCreated, code)
	var created todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, _ = do(t, g, http.MethodGet, "/api/v1/todos/"+created.ID, "token-b", "")
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, g, http.MethodPatch, "/api/v1/todos/"+created.ID, "token-b", `{"completed":true}`)
	require.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, g, http.MethodDelete, "/api/v1/todos/"+created.ID, "token-b", "")
	require.Equal(t, http.StatusNotFound, code)

	// unchanged for the owner
	code, env = do(t, g, http.MethodGet, "/api/v1/todos/"+created.ID, "token-a", "")
	require.Equal(t, http.StatusOK, code)
	var got todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.False(t, got.Completed)
}

func TestTodoValidation(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	// missing title
	code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"   "}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Details, "title")

	// oversized title
	long := strings.Repeat("x", 201)
	code, env = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"`+long+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Details, "title")

	// oversized description
	longDesc := strings.Repeat("d", 1001)
	code, env = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"ok","description":"`+longDesc+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Details, "description")

	// malformed id
	code, _ = do(t, g, http.MethodGet, "/api/v1/todos/not-an-id", "token-a", "")
	require.Equal(t, http.StatusBadRequest, code)

	// bounds count characters, not bytes: 150 two-byte runes are well within 200
	accented := strings.Repeat("é", 150)
	code, env = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"`+accented+`"}`)
	require.Equal(t, http.StatusCreated, code)
	var multibyte todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &multibyte))
	require.Equal(t, accented, multibyte.Title)

	// 201 runes is over the limit regardless of byte width
	code, env = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"`+strings.Repeat("é", 201)+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, env.Details, "title")

	// same rule for descriptions
	code, _ = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"ok","description":"`+strings.Repeat("ü", 1000)+`"}`)
	require.Equal(t, http.StatusCreated, code)

	// empty patch
	code, env = do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"patchme"}`)
	require.Equal(t, http.StatusCreated, code)
	var created todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &created))
	code, _ = do(t, g, http.MethodPatch, "/api/v1/todos/"+created.ID, "token-a", `{}`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestTodoUpdateClearsDescription(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"keep","description":"temporary"}`)
	require.Equal(t, http.StatusCreated, code)
	var created todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "temporary", created.Description)

	// the empty string is the field's default, so an explicit "" resets it
	code, env = do(t, g, http.MethodPatch, "/api/v1/todos/"+created.ID, "token-a", `{"description":""}`)
	require.Equal(t, http.StatusOK, code)
	var updated todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Empty(t, updated.Description)
	require.Equal(t, "keep", updated.Title)
}

func TestTodoToggleEndpoint(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"flip"}`)
	require.Equal(t, http.StatusCreated, code)
	var created todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = do(t, g, http.MethodPost, "/api/v1/todos/"+created.ID+"/toggle", "token-a", "")
	require.Equal(t, http.StatusOK, code)
	var flipped todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &flipped))
	require.True(t, flipped.Completed)

	code, env = do(t, g, http.MethodPost, "/api/v1/todos/"+created.ID+"/toggle", "token-a", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &flipped))
	require.False(t, flipped.Completed)
}

func TestDeleteCompletedEndpoint(t *testing.T) {
	g := setupRouter(repository.NewMemoryRepository())

	ids := make([]string, 0, 3)
	for _, title := range []string{"a", "b", "c"} {
		code, env := do(t, g, http.MethodPost, "/api/v1/todos", "token-a", `{"title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, code)
		var created todo.Response
		require.NoError(t, json.Unmarshal(env.Data, &created))
		ids = append(ids, created.ID)
	}
	// complete two of three
	for _, id := range ids[:2] {
		code, _ := do(t, g, http.MethodPost, "/api/v1/todos/"+id+"/toggle", "token-a", "")
		require.Equal(t, http.StatusOK, code)
	}

	code, env := do(t, g, http.MethodDelete, "/api/v1/todos/completed/all", "token-a", "")
	require.Equal(t, http.StatusOK, code)
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.EqualValues(t, 2, out.DeletedCount)

	code, env = do(t, g, http.MethodGet, "/api/v1/todos", "token-a", "")
	require.Equal(t, http.StatusOK, code)
	var list []todo.Response
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, "c", list[0].Title)
}
