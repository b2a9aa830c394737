package services

import (
	"context"
	"testing"
	"time"

	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func friendUUIDs(t *testing.T, svc *UserService, id uuid.UUID) []uuid.UUID {
	t.Helper()
	user, err := svc.GetByUUID(context.Background(), id)
	require.NoError(t, err)
	list, err := user.FriendList()
	require.NoError(t, err)
	return list
}

func TestAddFriendSymmetric(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	a := registerUser(t, users, "a@example.com")
	b := registerUser(t, users, "b@example.com")

	require.NoError(t, svc.AddFriend(ctx, a.UUID, b.UUID))

	require.Equal(t, []uuid.UUID{b.UUID}, friendUUIDs(t, users, a.UUID))
	require.Equal(t, []uuid.UUID{a.UUID}, friendUUIDs(t, users, b.UUID))

	ok, err := svc.AreFriends(ctx, a.UUID, b.UUID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = svc.AreFriends(ctx, b.UUID, a.UUID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAddFriendRejections(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	a := registerUser(t, users, "a@example.com")
	b := registerUser(t, users, "b@example.com")

	require.ErrorIs(t, svc.AddFriend(ctx, a.UUID, a.UUID), ErrSelfFriendship)

	require.NoError(t, svc.AddFriend(ctx, a.UUID, b.UUID))
	require.ErrorIs(t, svc.AddFriend(ctx, a.UUID, b.UUID), ErrAlreadyFriends)
	// same pair, opposite order
	require.ErrorIs(t, svc.AddFriend(ctx, b.UUID, a.UUID), ErrAlreadyFriends)

	require.ErrorIs(t, svc.AddFriend(ctx, a.UUID, uuid.New()), ErrUserNotFound)
	require.ErrorIs(t, svc.AddFriend(ctx, uuid.New(), a.UUID), ErrUserNotFound)
}

func TestRemoveFriend(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	a := registerUser(t, users, "a@example.com")
	b := registerUser(t, users, "b@example.com")
	c := registerUser(t, users, "c@example.com")

	require.NoError(t, svc.AddFriend(ctx, a.UUID, b.UUID))
	require.NoError(t, svc.AddFriend(ctx, a.UUID, c.UUID))

	require.NoError(t, svc.RemoveFriend(ctx, a.UUID, b.UUID))

	require.Equal(t, []uuid.UUID{c.UUID}, friendUUIDs(t, users, a.UUID))
	require.Empty(t, friendUUIDs(t, users, b.UUID))

	ok, err := svc.AreFriends(ctx, a.UUID, b.UUID)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, svc.RemoveFriend(ctx, a.UUID, b.UUID), ErrNotFriends)
	require.ErrorIs(t, svc.RemoveFriend(ctx, a.UUID, uuid.New()), ErrUserNotFound)
}

func TestMutualFriends(t *testing.T) {
	db := newTestDB(t)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	// seed the shared circle with fixed times so the connection order
	// is deterministic
	base := time.Date(2024, 7, 3, 8, 0, 0, 0, time.UTC)
	shared1 := seedUser(t, db, "shared1", base)
	shared2 := seedUser(t, db, "shared2", base.Add(time.Minute))
	onlyA := seedUser(t, db, "onlyA", base.Add(2*time.Minute))
	a := seedUser(t, db, "a", base.Add(3*time.Minute))
	b := seedUser(t, db, "b", base.Add(4*time.Minute))

	for _, friend := range []uuid.UUID{shared1.UUID, shared2.UUID, onlyA.UUID} {
		require.NoError(t, svc.AddFriend(ctx, a.UUID, friend))
	}
	require.NoError(t, svc.AddFriend(ctx, b.UUID, shared1.UUID))
	require.NoError(t, svc.AddFriend(ctx, b.UUID, shared2.UUID))

	conn, err := svc.MutualFriends(ctx, a.UUID, b.UUID, pagination.Args{})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	require.Equal(t, shared1.UUID, conn.Edges[0].Node.UUID)
	require.Equal(t, shared2.UUID, conn.Edges[1].Node.UUID)
	require.EqualValues(t, 2, conn.TotalCount)
	require.False(t, conn.PageInfo.HasNextPage)
}

func TestMutualFriendsNoOverlap(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	a := registerUser(t, users, "a@example.com")
	b := registerUser(t, users, "b@example.com")
	c := registerUser(t, users, "c@example.com")
	require.NoError(t, svc.AddFriend(ctx, a.UUID, c.UUID))

	conn, err := svc.MutualFriends(ctx, a.UUID, b.UUID, pagination.Args{})
	require.NoError(t, err)
	require.NotNil(t, conn.Edges)
	require.Empty(t, conn.Edges)
	require.EqualValues(t, 0, conn.TotalCount)
	require.Nil(t, conn.PageInfo.StartCursor)
	require.Nil(t, conn.PageInfo.EndCursor)
}

func TestFriendshipTransactionLeavesNoPartialState(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	svc := NewFriendshipService(db)
	ctx := context.Background()

	a := registerUser(t, users, "a@example.com")
	ghost := uuid.New()

	err := svc.AddFriend(ctx, a.UUID, ghost)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NotErrorIs(t, err, gorm.ErrRecordNotFound)
	require.Empty(t, friendUUIDs(t, users, a.UUID))
}
