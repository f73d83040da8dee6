package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-app/internal/config"
	"github.com/Tomlord1122/todo-app/internal/database"
	"github.com/Tomlord1122/todo-app/internal/domain"
	"github.com/Tomlord1122/todo-app/internal/server"
	"github.com/Tomlord1122/todo-app/internal/service"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithHTTPClient(srv.Client()), WithRetryInterval(time.Millisecond))
}

// newAPIClient runs the real router over an in-memory store.
func newAPIClient(t *testing.T) *Client {
	t.Helper()
	db, err := database.New(context.Background(), config.StoreConfig{URL: "memory://"})
	require.NoError(t, err)
	h := server.NewServer(config.Server{}, service.NewTodoService(db.Todos()), db).Handler
	return newTestClient(t, h)
}

// dropConnection closes the connection without writing a response.
func dropConnection(w http.ResponseWriter) {
	conn, _, err := w.(http.Hijacker).Hijack()
	if err != nil {
		panic(err)
	}
	conn.Close()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_CRUDAgainstServer(t *testing.T) {
	ctx := context.Background()
	c := newAPIClient(t)

	todos, err := c.GetTodos(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)

	created, err := c.CreateTodo(ctx, CreateTodoRequest{Title: "Buy milk"}).Await(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Nil(t, created.Description)
	assert.Nil(t, created.Deadline)

	got, err := c.GetTodo(ctx, created.ID).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := c.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Description: domain.Some("semi-skimmed")}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "semi-skimmed", *updated.Description)

	cleared, err := c.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Description: domain.Null[string]()}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", cleared.Title)
	assert.Nil(t, cleared.Description)

	todos, err = c.GetTodos(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	_, err = c.DeleteTodo(ctx, created.ID).Await(ctx)
	require.NoError(t, err)

	_, err = c.GetTodo(ctx, created.ID).Await(ctx)
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)

	_, err = c.DeleteTodo(ctx, created.ID).Await(ctx)
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)
}

func TestClient_ValidationError(t *testing.T) {
	ctx := context.Background()
	c := newAPIClient(t)

	_, err := c.CreateTodo(ctx, CreateTodoRequest{Title: ""}).Await(ctx)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindValidation, cerr.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, cerr.Status)
	assert.Equal(t, "title cannot be empty", cerr.UserMessage())
}

func TestClient_GetTodosRetriesOnceAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			dropConnection(w)
			return
		}
		writeJSON(w, http.StatusOK, []domain.Todo{{ID: "1", Title: "Buy milk"}})
	}))

	todos, err := c.GetTodos(ctx).Await(ctx)

	require.NoError(t, err)
	assert.Equal(t, []domain.Todo{{ID: "1", Title: "Buy milk"}}, todos)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetTodosGivesUpAfterOneRetry(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		dropConnection(w)
	}))

	_, err := c.GetTodos(ctx).Await(ctx)

	assert.True(t, IsKind(err, KindTransport), "got %v", err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "Could not reach the server. Check your connection and try again.", UserMessage(err))
}

func TestClient_NonJSONResponseIsTransport(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>captive portal</html>")
	}))

	_, err := c.GetTodos(ctx).Await(ctx)

	assert.True(t, IsKind(err, KindTransport), "got %v", err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_MutationsAreNeverRetried(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		dropConnection(w)
	}))

	_, err := c.CreateTodo(ctx, CreateTodoRequest{Title: "x"}).Await(ctx)
	assert.True(t, IsKind(err, KindTransport), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.UpdateTodo(ctx, "1", UpdateTodoRequest{Title: domain.Some("y")}).Await(ctx)
	assert.True(t, IsKind(err, KindTransport), "got %v", err)
	assert.Equal(t, int32(2), calls.Load())

	_, err = c.DeleteTodo(ctx, "1").Await(ctx)
	assert.True(t, IsKind(err, KindTransport), "got %v", err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_SemanticErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{name: "not found", status: http.StatusNotFound, kind: KindNotFound},
		{name: "bad request", status: http.StatusBadRequest, kind: KindValidation},
		{name: "server error", status: http.StatusInternalServerError, kind: KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.status, map[string]string{"error": "nope"})
			}))

			_, err := c.GetTodos(ctx).Await(ctx)

			assert.True(t, IsKind(err, tt.kind), "got %v", err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClient_ServerErrorMessageIsGeneric(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve todos"})
	}))

	_, err := c.GetTodos(ctx).Await(ctx)

	assert.Equal(t, "Something went wrong, please try again later.", UserMessage(err))
}

func TestClient_CancelledCallDropsResult(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, []domain.Todo{{ID: "late", Title: "late"}})
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	p := c.GetTodos(ctx)
	cancel()

	r := <-p
	assert.True(t, IsKind(r.Err, KindCancelled), "got %v", r.Err)
	assert.Nil(t, r.Value)
}

func TestPromise_AwaitHonoursCallerContext(t *testing.T) {
	never := make(chan Result[int])
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Promise[int](never).Await(ctx)

	assert.True(t, IsKind(err, KindCancelled))
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{name: "404", status: 404, body: `{"error":"Todo not found"}`, kind: KindNotFound, msg: "Todo not found"},
		{name: "422", status: 422, body: `{"error":"title cannot be empty"}`, kind: KindValidation, msg: "title cannot be empty"},
		{name: "403", status: 403, body: `{"error":"Origin not allowed"}`, kind: KindValidation, msg: "Origin not allowed"},
		{name: "500 json", status: 500, body: `{"error":"Failed to create todo"}`, kind: KindServer, msg: "Failed to create todo"},
		{name: "502 html", status: 502, body: `<html>Bad Gateway</html>`, kind: KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalize(ctx, nil, tt.status, []byte(tt.body))
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.msg, err.Message)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}
