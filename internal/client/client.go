// Package client is the front end's view of the Todo API. Every operation
// returns a Promise that settles once with either a value or a normalized
// *Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Tomlord1122/todo-app/internal/domain"
)

const DefaultRetryInterval = 300 * time.Millisecond

// CreateTodoRequest is the payload of CreateTodo.
type CreateTodoRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateTodoRequest is the payload of UpdateTodo. Unset fields are not sent
// and stay unchanged on the server; domain.Null clears a field.
type UpdateTodoRequest struct {
	Title       domain.Optional[string]    `json:"title,omitzero"`
	Description domain.Optional[string]    `json:"description,omitzero"`
	Deadline    domain.Optional[time.Time] `json:"deadline,omitzero"`
}

// Client talks to the Todo API at a single base URL. One Client is meant to
// be shared by every consumer in the process.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryInterval time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryInterval sets the pause before the single read retry.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.retryInterval = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTodos lists all todos. A transport failure is retried once.
func (c *Client) GetTodos(ctx context.Context) Promise[[]domain.Todo] {
	return goAsync(ctx, func(ctx context.Context) ([]domain.Todo, error) {
		var todos []domain.Todo
		err := c.retryRead(ctx, func() error {
			todos = nil
			return c.do(ctx, http.MethodGet, "/todos", nil, &todos)
		})
		if todos == nil {
			todos = []domain.Todo{}
		}
		return todos, err
	})
}

// GetTodo fetches one todo. A transport failure is retried once.
func (c *Client) GetTodo(ctx context.Context, id string) Promise[domain.Todo] {
	return goAsync(ctx, func(ctx context.Context) (domain.Todo, error) {
		var todo domain.Todo
		err := c.retryRead(ctx, func() error {
			return c.do(ctx, http.MethodGet, todoPath(id), nil, &todo)
		})
		return todo, err
	})
}

func (c *Client) CreateTodo(ctx context.Context, req CreateTodoRequest) Promise[domain.Todo] {
	return goAsync(ctx, func(ctx context.Context) (domain.Todo, error) {
		var todo domain.Todo
		err := c.do(ctx, http.MethodPost, "/todos", req, &todo)
		return todo, err
	})
}

func (c *Client) UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) Promise[domain.Todo] {
	return goAsync(ctx, func(ctx context.Context) (domain.Todo, error) {
		var todo domain.Todo
		err := c.do(ctx, http.MethodPut, todoPath(id), req, &todo)
		return todo, err
	})
}

func (c *Client) DeleteTodo(ctx context.Context, id string) Promise[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
	})
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

// retryRead runs op and, if it fails with KindTransport, runs it exactly
// once more. Other kinds stop immediately.
func (c *Client) retryRead(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), 1),
		ctx,
	)
	err := backoff.Retry(func() error {
		err := op()
		if err != nil && !IsKind(err, KindTransport) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err != nil {
		return normalize(ctx, err, 0, nil)
	}
	return nil
}

// do performs one request. out may be nil when no body is expected.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return normalize(ctx, fmt.Errorf("encode request: %w", err), 0, nil)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return normalize(ctx, fmt.Errorf("build request: %w", err), 0, nil)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalize(ctx, err, 0, nil)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalize(ctx, err, 0, nil)
	}
	if resp.StatusCode >= 400 {
		return normalize(ctx, nil, resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return normalize(ctx, fmt.Errorf("decode %s %s response: %w", method, path, err), 0, nil)
	}
	return nil
}
