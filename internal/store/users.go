package store

import (
	"context"
	"strings"
	"time"

	"github.com/canberkoguz/socialgraph/internal/models"
	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter is the structural read predicate over the users collection.
// Zero-valued fields are unconstrained. No query-language detail leaks
// above this boundary; store errors propagate unwrapped so callers can
// treat them uniformly as backend failures.
type Filter struct {
	UUID         *uuid.UUID
	Email        *string
	ReferralCode *string
	ReferredBy   *uuid.UUID

	// UUIDIn restricts to an explicit identifier set. A non-nil empty
	// slice matches nothing (an empty friend list is a valid filter).
	UUIDIn []uuid.UUID

	IsActive      *bool
	NameContains  *string
	EmailContains *string
	// Search matches name OR email, case-insensitive.
	Search        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// UserStore implements the document-store read contract (find, count,
// findOne) plus the write operations the services need, on GORM.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a store bound to the given transaction handle.
func (s *UserStore) WithTx(tx *gorm.DB) *UserStore {
	return &UserStore{db: tx}
}

func (s *UserStore) query(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.UUID != nil {
		q = q.Where("uuid = ?", *f.UUID)
	}
	if f.Email != nil {
		q = q.Where("email = ?", *f.Email)
	}
	if f.ReferralCode != nil {
		q = q.Where("referral_code = ?", *f.ReferralCode)
	}
	if f.ReferredBy != nil {
		q = q.Where("referred_by = ?", *f.ReferredBy)
	}
	if f.UUIDIn != nil {
		if len(f.UUIDIn) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("uuid IN ?", f.UUIDIn)
		}
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.NameContains != nil {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*f.NameContains)+"%")
	}
	if f.EmailContains != nil {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(*f.EmailContains)+"%")
	}
	if f.Search != nil {
		term := "%" + strings.ToLower(*f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created_at > ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_at < ?", *f.CreatedBefore)
	}
	return q
}

// Find returns up to limit users matching f, bounded by the optional
// sort-key cursors (exclusive on both sides), ordered by
// (created_at, uuid) ascending, or descending when desc is set.
func (s *UserStore) Find(ctx context.Context, f Filter, after, before *pagination.SortKey, limit int, desc bool) ([]models.User, error) {
	q := s.query(ctx, f)
	if after != nil {
		q = q.Where("created_at > ? OR (created_at = ? AND uuid > ?)",
			after.CreatedAt, after.CreatedAt, after.UUID)
	}
	if before != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND uuid < ?)",
			before.CreatedAt, before.CreatedAt, before.UUID)
	}
	order := "created_at ASC, uuid ASC"
	if desc {
		order = "created_at DESC, uuid DESC"
	}
	var users []models.User
	if err := q.Order(order).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count runs an independent count over the same filter. It is not
// point-in-time consistent with Find under concurrent writes.
func (s *UserStore) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := s.query(ctx, f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FindOne returns the single user matching f, or
// gorm.ErrRecordNotFound when none does.
func (s *UserStore) FindOne(ctx context.Context, f Filter) (*models.User, error) {
	var user models.User
	if err := s.query(ctx, f).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user by uuid and reports whether a row matched.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Where("uuid = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Source adapts a filter into a pagination source: the page query and
// the count query share the filter but run independently.
func (s *UserStore) Source(f Filter) pagination.Source[models.User] {
	return &userSource{store: s, filter: f}
}

type userSource struct {
	store  *UserStore
	filter Filter
}

func (src *userSource) Fetch(ctx context.Context, after, before *pagination.SortKey, limit int, desc bool) ([]models.User, error) {
	return src.store.Find(ctx, src.filter, after, before, limit, desc)
}

func (src *userSource) Count(ctx context.Context) (int64, error) {
	return src.store.Count(ctx, src.filter)
}
