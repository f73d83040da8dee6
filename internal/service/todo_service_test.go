package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-app/internal/domain"
	"github.com/Tomlord1122/todo-app/internal/repository"
)

func strPtr(s string) *string { return &s }

func newTestService() TodoService {
	return NewTodoService(repository.NewMemoryTodoRepository())
}

func TestCreateTodo_BuyMilk(t *testing.T) {
	svc := newTestService()

	todo, err := svc.CreateTodo(context.Background(), CreateTodoRequest{Title: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Nil(t, todo.Description)
	assert.Nil(t, todo.Deadline)
}

func TestCreateTodo_FieldsEqualInput(t *testing.T) {
	svc := newTestService()
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	todo, err := svc.CreateTodo(context.Background(), CreateTodoRequest{
		Title:       "File taxes",
		Description: strPtr("before the deadline"),
		Deadline:    &deadline,
	})
	require.NoError(t, err)

	assert.Equal(t, "File taxes", todo.Title)
	assert.Equal(t, "before the deadline", *todo.Description)
	assert.True(t, deadline.Equal(*todo.Deadline))
	assert.Equal(t, time.UTC, todo.Deadline.Location())
}

func TestCreateTodo_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTodoRequest
		message string
	}{
		{name: "empty title", req: CreateTodoRequest{Title: ""}, message: "title cannot be empty"},
		{name: "blank title", req: CreateTodoRequest{Title: "   "}, message: "title cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			ctx := context.Background()

			_, err := svc.CreateTodo(ctx, tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)

			todos, err := svc.ListTodos(ctx)
			require.NoError(t, err)
			assert.Empty(t, todos, "nothing may be persisted on validation failure")
		})
	}
}

func TestCreateTodo_TitleStoredAsSent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	long := strings.Repeat("x", 5000)

	padded, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "  Buy milk  ", padded.Title)

	big, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: long, Description: strPtr(long)})
	require.NoError(t, err)
	assert.Equal(t, long, big.Title)
	assert.Equal(t, long, *big.Description)
}

func TestGetTodo_RoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Call mom", Description: strPtr("Sunday")})
	require.NoError(t, err)

	got, err := svc.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestGetTodo_NotFound(t *testing.T) {
	_, err := newTestService().GetTodo(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTodo_TitleOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	deadline := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Old", Description: strPtr("keep me"), Deadline: &deadline})
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Title: domain.Some("x")})
	require.NoError(t, err)

	assert.Equal(t, "x", updated.Title)
	assert.Equal(t, "keep me", *updated.Description)
	assert.True(t, deadline.Equal(*updated.Deadline))

	stored, err := svc.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUpdateTodo_DescriptionAndDeadline(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	deadline := time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Gifts"})
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Description: domain.Some("for everyone"), Deadline: domain.Some(deadline)})
	require.NoError(t, err)

	assert.Equal(t, "Gifts", updated.Title)
	assert.Equal(t, "for everyone", *updated.Description)
	assert.True(t, deadline.Equal(*updated.Deadline))
}

func TestUpdateTodo_NullClearsFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Dentist", Description: strPtr("d"), Deadline: &deadline})
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{
		Description: domain.Null[string](),
		Deadline:    domain.Null[time.Time](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dentist", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.Deadline)

	stored, err := svc.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Description)
	assert.Nil(t, stored.Deadline)
}

func TestUpdateTodo_PaddedTitleStoredAsSent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Old"})
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Title: domain.Some(" New ")})
	require.NoError(t, err)
	assert.Equal(t, " New ", updated.Title)
}

func TestUpdateTodo_EmptyPayloadReturnsStored(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Unchanged"})
	require.NoError(t, err)

	updated, err := svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)
}

func TestUpdateTodo_Errors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.UpdateTodo(ctx, "nonexistent", UpdateTodoRequest{Title: domain.Some("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Valid"})
	require.NoError(t, err)

	for _, title := range []domain.Optional[string]{domain.Some("  "), domain.Null[string]()} {
		_, err = svc.UpdateTodo(ctx, created.ID, UpdateTodoRequest{Title: title})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	}

	stored, err := svc.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Valid", stored.Title)
}

func TestDeleteTodo(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: "Ephemeral"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTodo(ctx, created.ID))

	_, err = svc.GetTodo(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTodo(ctx, created.ID), ErrNotFound, "second delete is not a silent success")
}

func TestListTodos_CountTracksCreateAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	todos, err := svc.ListTodos(ctx)
	require.NoError(t, err)
	require.NotNil(t, todos)
	assert.Len(t, todos, 0)

	var ids []string
	for i, title := range []string{"one", "two", "three"} {
		created, err := svc.CreateTodo(ctx, CreateTodoRequest{Title: title})
		require.NoError(t, err)
		ids = append(ids, created.ID)

		todos, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Len(t, todos, i+1)
	}

	for i, id := range ids {
		require.NoError(t, svc.DeleteTodo(ctx, id))

		todos, err := svc.ListTodos(ctx)
		require.NoError(t, err)
		assert.Len(t, todos, len(ids)-i-1)
	}
}

// failingRepository fails every call with a driver-like error.
type failingRepository struct{ err error }

func (r failingRepository) Create(context.Context, *domain.Todo) error { return r.err }
func (r failingRepository) FindByID(context.Context, string) (*domain.Todo, error) {
	return nil, r.err
}
func (r failingRepository) GetAll(context.Context) ([]domain.Todo, error) { return nil, r.err }
func (r failingRepository) Update(context.Context, *domain.Todo) error    { return r.err }
func (r failingRepository) Delete(context.Context, string) error          { return r.err }

func TestStoreFailuresAreInternal(t *testing.T) {
	svc := NewTodoService(failingRepository{err: errors.New("connection refused: 10.0.0.5:27017")})
	ctx := context.Background()

	_, err := svc.ListTodos(ctx)
	assert.ErrorIs(t, err, ErrInternal)

	_, err = svc.GetTodo(ctx, "abc")
	assert.ErrorIs(t, err, ErrInternal)

	_, err = svc.CreateTodo(ctx, CreateTodoRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotContains(t, err.Error(), "10.0.0.5")

	_, err = svc.UpdateTodo(ctx, "abc", UpdateTodoRequest{Title: domain.Some("x")})
	assert.ErrorIs(t, err, ErrInternal)

	assert.ErrorIs(t, svc.DeleteTodo(ctx, "abc"), ErrInternal)
}
