package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/canberkoguz/socialgraph/internal/models"
	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/canberkoguz/socialgraph/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSelfFriendship = errors.New("cannot friend yourself")
	ErrAlreadyFriends = errors.New("users are already friends")
	ErrNotFriends     = errors.New("users are not friends")
)

// FriendshipService owns the write boundary of the symmetric
// friendship relation: both users' friend sets change together inside
// one transaction, which is the only place the symmetry invariant is
// enforced.
type FriendshipService struct {
	db    *gorm.DB
	store *store.UserStore
}

func NewFriendshipService(db *gorm.DB) *FriendshipService {
	return &FriendshipService{db: db, store: store.NewUserStore(db)}
}

func (s *FriendshipService) AddFriend(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return ErrSelfFriendship
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		userA, userB, err := loadPair(ctx, txStore, a, b)
		if err != nil {
			return err
		}
		if userA.HasFriend(b) {
			return ErrAlreadyFriends
		}
		if err := appendFriend(userA, b); err != nil {
			return err
		}
		if err := appendFriend(userB, a); err != nil {
			return err
		}
		if err := txStore.Save(ctx, userA); err != nil {
			return fmt.Errorf("failed to save friendship: %w", err)
		}
		if err := txStore.Save(ctx, userB); err != nil {
			return fmt.Errorf("failed to save friendship: %w", err)
		}
		return nil
	})
}

func (s *FriendshipService) RemoveFriend(ctx context.Context, a, b uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		userA, userB, err := loadPair(ctx, txStore, a, b)
		if err != nil {
			return err
		}
		if !userA.HasFriend(b) {
			return ErrNotFriends
		}
		if err := dropFriend(userA, b); err != nil {
			return err
		}
		if err := dropFriend(userB, a); err != nil {
			return err
		}
		if err := txStore.Save(ctx, userA); err != nil {
			return fmt.Errorf("failed to remove friendship: %w", err)
		}
		if err := txStore.Save(ctx, userB); err != nil {
			return fmt.Errorf("failed to remove friendship: %w", err)
		}
		return nil
	})
}

// AreFriends reports the friendship status between two users.
func (s *FriendshipService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	userA, err := s.store.FindOne(ctx, store.Filter{UUID: &a})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, err
	}
	return userA.HasFriend(b), nil
}

// MutualFriends pages the intersection of both users' friend sets.
func (s *FriendshipService) MutualFriends(ctx context.Context, a, b uuid.UUID, args pagination.Args) (*pagination.Connection[models.User], error) {
	userA, userB, err := loadPair(ctx, s.store, a, b)
	if err != nil {
		return nil, err
	}

	listA, err := userA.FriendList()
	if err != nil {
		return nil, err
	}
	listB, err := userB.FriendList()
	if err != nil {
		return nil, err
	}

	inB := make(map[uuid.UUID]bool, len(listB))
	for _, id := range listB {
		inB[id] = true
	}
	mutual := make([]uuid.UUID, 0)
	for _, id := range listA {
		if inB[id] {
			mutual = append(mutual, id)
		}
	}

	return pagination.Paginate(ctx, s.store.Source(store.Filter{UUIDIn: mutual}), args, models.User.SortKey)
}

func loadPair(ctx context.Context, st *store.UserStore, a, b uuid.UUID) (*models.User, *models.User, error) {
	userA, err := st.FindOne(ctx, store.Filter{UUID: &a})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	userB, err := st.FindOne(ctx, store.Filter{UUID: &b})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return userA, userB, nil
}

func appendFriend(user *models.User, id uuid.UUID) error {
	list, err := user.FriendList()
	if err != nil {
		return err
	}
	return user.SetFriendList(append(list, id))
}

func dropFriend(user *models.User, id uuid.UUID) error {
	list, err := user.FriendList()
	if err != nil {
		return err
	}
	return user.SetFriendList(remove(list, id))
}
