package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/roomstage/internal/domain/activity"
	"github.com/ganot/roomstage/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	entry1 := &activity.Entry{
		ProjectID: "p1",
		Type:      activity.TypeProjectCreated,
		Summary:   "Created project Kitchen",
		Details:   `{"name":"Kitchen"}`,
		CreatedAt: base,
	}
	roomID := "room-1"
	entry2 := &activity.Entry{
		ProjectID: "p1",
		RoomID:    &roomID,
		Type:      activity.TypeRoomUpdated,
		Summary:   "Updated room for Kitchen",
		CreatedAt: base.Add(time.Minute),
	}

	require.NoError(t, repo.Log(ctx, entry1))
	require.NoError(t, repo.Log(ctx, entry2))
	require.NotZero(t, entry1.ID)
	require.NotEqual(t, entry1.ID, entry2.ID)

	entries, err := repo.List(ctx, activity.ListOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.TypeRoomUpdated, entries[0].Type)
	require.Equal(t, roomID, *entries[0].RoomID)
	require.Empty(t, entries[0].Details)
	require.Equal(t, activity.TypeProjectCreated, entries[1].Type)
	require.Nil(t, entries[1].RoomID)
	require.Equal(t, `{"name":"Kitchen"}`, entries[1].Details)
	require.True(t, entries[1].CreatedAt.Equal(base))
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i, e := range []activity.Entry{
		{ProjectID: "p1", Type: activity.TypeProjectCreated, Summary: "a"},
		{ProjectID: "p1", Type: activity.TypeProjectUpdated, Summary: "b"},
		{ProjectID: "p2", Type: activity.TypeProjectCreated, Summary: "c"},
		{Type: activity.TypeCaptureDeleted, Summary: "d"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Log(ctx, &e))
	}

	created := activity.TypeProjectCreated
	entries, err := repo.List(ctx, activity.ListOptions{Type: &created})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Summary)

	entries, err = repo.List(ctx, activity.ListOptions{ProjectID: "p1", Type: &created})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Summary)

	entries, err = repo.List(ctx, activity.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Summary)
	require.Equal(t, "b", entries[1].Summary)

	entries, err = repo.List(ctx, activity.ListOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Summary)
}

func TestActivityRepository_ClosedDB(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.Close())

	repo := NewActivityRepository(db)
	err = repo.Log(context.Background(), &activity.Entry{Type: activity.TypeProjectCreated, Summary: "x"})
	require.ErrorIs(t, err, repository.ErrIO)

	_, err = repo.List(context.Background(), activity.ListOptions{})
	require.ErrorIs(t, err, repository.ErrIO)
}
