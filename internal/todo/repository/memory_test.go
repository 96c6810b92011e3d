package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todofy/todofy/internal/todo"
)

func TestCreateAndGetRoundTrip(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	created, err := r.Create(ctx, "owner-a", "Buy milk", "2%")
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())
	require.False(t, created.Completed)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := r.GetByID(ctx, created.ID, "owner-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, created.Description, got.Description)
	require.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestOwnershipIsolation(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	rec, err := r.Create(ctx, "owner-a", "private", "")
	require.NoError(t, err)

	// reads by another principal look identical to nonexistent records
	got, err := r.GetByID(ctx, rec.ID, "owner-b")
	require.NoError(t, err)
	require.Nil(t, got)

	title := "stolen"
	upd, err := r.Update(ctx, rec.ID, "owner-b", todo.UpdateInput{Title: &title})
	require.NoError(t, err)
	require.Nil(t, upd)

	tog, err := r.ToggleCompletion(ctx, rec.ID, "owner-b")
	require.NoError(t, err)
	require.Nil(t, tog)

	deleted, err := r.Delete(ctx, rec.ID, "owner-b")
	require.NoError(t, err)
	require.False(t, deleted)

	// record is unmodified for its owner
	got, err = r.GetByID(ctx, rec.ID, "owner-a")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "private", got.Title)
	require.False(t, got.Completed)
}

func TestListByOwnerOrdering(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	r1, err := r.Create(ctx, "owner-a", "first", "")
	require.NoError(t, err)
	r2, err := r.Create(ctx, "owner-a", "second", "")
	require.NoError(t, err)
	r3, err := r.Create(ctx, "owner-a", "third", "")
	require.NoError(t, err)
	_, err = r.Create(ctx, "owner-b", "other", "")
	require.NoError(t, err)

	list, err := r.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, r3.ID, list[0].ID)
	require.Equal(t, r2.ID, list[1].ID)
	require.Equal(t, r1.ID, list[2].ID)

	empty, err := r.ListByOwner(ctx, "owner-c")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestPartialUpdatePreservesFields(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	rec, err := r.Create(ctx, "owner-a", "title", "desc")
	require.NoError(t, err)

	done := true
	upd, err := r.Update(ctx, rec.ID, "owner-a", todo.UpdateInput{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, upd)
	require.True(t, upd.Completed)
	require.Equal(t, "title", upd.Title)
	require.Equal(t, "desc", upd.Description)
	require.Equal(t, rec.CreatedAt, upd.CreatedAt)
	require.True(t, upd.UpdatedAt.After(rec.UpdatedAt))
}

func TestToggleInvolution(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	rec, err := r.Create(ctx, "owner-a", "t", "")
	require.NoError(t, err)

	once, err := r.ToggleCompletion(ctx, rec.ID, "owner-a")
	require.NoError(t, err)
	require.True(t, once.Completed)
	require.True(t, once.UpdatedAt.After(rec.UpdatedAt))

	twice, err := r.ToggleCompletion(ctx, rec.ID, "owner-a")
	require.NoError(t, err)
	require.False(t, twice.Completed)
	require.True(t, twice.UpdatedAt.After(once.UpdatedAt))
}

func TestDeleteIsIdempotentAsValue(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	rec, err := r.Create(ctx, "owner-a", "t", "")
	require.NoError(t, err)

	first, err := r.Delete(ctx, rec.ID, "owner-a")
	require.NoError(t, err)
	require.True(t, first)

	second, err := r.Delete(ctx, rec.ID, "owner-a")
	require.NoError(t, err)
	require.False(t, second)

	missing, err := r.Delete(ctx, primitive.NewObjectID(), "owner-a")
	require.NoError(t, err)
	require.False(t, missing)
}

func TestDeleteAllCompletedScope(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	a1, err := r.Create(ctx, "owner-a", "done-1", "")
	require.NoError(t, err)
	a2, err := r.Create(ctx, "owner-a", "done-2", "")
	require.NoError(t, err)
	a3, err := r.Create(ctx, "owner-a", "open", "")
	require.NoError(t, err)
	b1, err := r.Create(ctx, "owner-b", "done-b", "")
	require.NoError(t, err)

	for _, id := range []primitive.ObjectID{a1.ID, a2.ID} {
		_, err := r.ToggleCompletion(ctx, id, "owner-a")
		require.NoError(t, err)
	}
	_, err = r.ToggleCompletion(ctx, b1.ID, "owner-b")
	require.NoError(t, err)

	n, err := r.DeleteAllCompleted(ctx, "owner-a")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// owner-a keeps the open record, owner-b keeps the completed one
	remaining, err := r.ListByOwner(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, a3.ID, remaining[0].ID)

	kept, err := r.GetByID(ctx, b1.ID, "owner-b")
	require.NoError(t, err)
	require.NotNil(t, kept)
	require.True(t, kept.Completed)

	// nothing left to remove
	n, err = r.DeleteAllCompleted(ctx, "owner-a")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
