package services

import (
	"context"
	"errors"

	"github.com/canberkoguz/socialgraph/internal/models"
	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/canberkoguz/socialgraph/internal/store"
	"gorm.io/gorm"
)

// RelationsService resolves the two graph-shaped relations on top of
// the users collection. Friends and ReferredUsers differ only in the
// filter they hand to the paginator; Referrer is a plain single-entity
// lookup.
type RelationsService struct {
	store *store.UserStore
}

func NewRelationsService(db *gorm.DB) *RelationsService {
	return &RelationsService{store: store.NewUserStore(db)}
}

// Friends pages the users whose uuid is in user's friend set, in the
// same (created_at, uuid) order as the base listing.
func (s *RelationsService) Friends(ctx context.Context, user *models.User, args pagination.Args) (*pagination.Connection[models.User], error) {
	ids, err := user.FriendList()
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(ctx, s.store.Source(store.Filter{UUIDIn: ids}), args, models.User.SortKey)
}

// ReferredUsers pages the users whose referred_by points at user.
func (s *RelationsService) ReferredUsers(ctx context.Context, user *models.User, args pagination.Args) (*pagination.Connection[models.User], error) {
	return pagination.Paginate(ctx, s.store.Source(store.Filter{ReferredBy: &user.UUID}), args, models.User.SortKey)
}

// Referrer resolves the referring user, or nil when the link is unset
// or dangles (the referrer was deleted). Acyclicity is a write-time
// invariant and is not re-checked here.
func (s *RelationsService) Referrer(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ReferredBy == nil {
		return nil, nil
	}
	referrer, err := s.store.FindOne(ctx, store.Filter{UUID: user.ReferredBy})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return referrer, nil
}

// ReferralStats counts user's direct referrals alongside their code.
func (s *RelationsService) ReferralStats(ctx context.Context, user *models.User) (int64, error) {
	return s.store.Count(ctx, store.Filter{ReferredBy: &user.UUID})
}
