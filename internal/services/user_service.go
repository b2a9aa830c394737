package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canberkoguz/socialgraph/internal/dto"
	"github.com/canberkoguz/socialgraph/internal/models"
	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/canberkoguz/socialgraph/internal/store"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrReferralCycle       = errors.New("referral link would create a cycle")
	ErrReferralCodeInvalid = errors.New("invalid referral code")
	ErrReferralAlreadySet  = errors.New("referral already set")
)

const referralCodeLength = 12

type UserService struct {
	db    *gorm.DB
	store *store.UserStore
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, store: store.NewUserStore(db)}
}

// Store exposes the read boundary for services composing on top.
func (s *UserService) Store() *store.UserStore {
	return s.store
}

// CreateUser registers a new user: unique referral code generated at
// creation, inbound referral code resolved to a ReferredBy link.
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	if _, err := s.store.FindOne(ctx, store.Filter{Email: &req.Email}); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UUID:         uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		IsActive:     true,
		ReferralCode: code,
		FriendUUIDs:  datatypes.JSON("[]"),
	}

	// An unknown inbound referral code is ignored, not an error.
	if req.ReferralCode != "" {
		referrer, err := s.store.FindOne(ctx, store.Filter{ReferralCode: &req.ReferralCode})
		switch {
		case err == nil:
			if err := s.assertNoReferralCycle(ctx, referrer, user.UUID); err != nil {
				return nil, err
			}
			user.ReferredBy = &referrer.UUID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	if err := s.store.Create(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) uniqueReferralCode(ctx context.Context) (string, error) {
	for {
		code, err := gonanoid.New(referralCodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		_, err = s.store.FindOne(ctx, store.Filter{ReferralCode: &code})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// assertNoReferralCycle walks the prospective referrer's chain and
// rejects the link if it would revisit candidate. Read paths never
// re-validate this; the forest shape is a write-time invariant.
func (s *UserService) assertNoReferralCycle(ctx context.Context, referrer *models.User, candidate uuid.UUID) error {
	seen := map[uuid.UUID]bool{candidate: true}
	current := referrer
	for {
		if seen[current.UUID] {
			return ErrReferralCycle
		}
		seen[current.UUID] = true
		if current.ReferredBy == nil {
			return nil
		}
		next, err := s.store.FindOne(ctx, store.Filter{UUID: current.ReferredBy})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Dangling weak reference terminates the chain.
			return nil
		}
		if err != nil {
			return err
		}
		current = next
	}
}

// LinkReferral sets a user's referred_by from another user's referral
// code. This is the single place a referral edge is created, so the
// forest invariant (no cycles) is checked here and nowhere else.
func (s *UserService) LinkReferral(ctx context.Context, id uuid.UUID, code string) (*models.User, error) {
	user, err := s.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ReferredBy != nil {
		return nil, ErrReferralAlreadySet
	}

	referrer, err := s.store.FindOne(ctx, store.Filter{ReferralCode: &code})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReferralCodeInvalid
	}
	if err != nil {
		return nil, err
	}

	if err := s.assertNoReferralCycle(ctx, referrer, user.UUID); err != nil {
		return nil, err
	}

	user.ReferredBy = &referrer.UUID
	if err := s.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link referral: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.FindOne(ctx, store.Filter{UUID: &id})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.FindOne(ctx, store.Filter{Email: &email})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Authenticate verifies email/password for the login endpoint.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.FindOne(ctx, store.Filter{Email: &email})
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// PatchUser applies a partial profile update.
func (s *UserService) PatchUser(ctx context.Context, id uuid.UUID, req *dto.PatchUserRequest) (*models.User, error) {
	user, err := s.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.store.FindOne(ctx, store.Filter{Email: req.Email}); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.store.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateUser replaces the mutable profile fields.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	return s.PatchUser(ctx, id, &dto.PatchUserRequest{
		Email:    &req.Email,
		Name:     &req.Name,
		IsActive: &req.IsActive,
	})
}

// DeleteUser hard-deletes the record. Friend sets referencing the
// uuid are cleaned up symmetrically so the friendship invariant holds.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := s.store.WithTx(tx)

		user, err := txStore.FindOne(ctx, store.Filter{UUID: &id})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		friendIDs, err := user.FriendList()
		if err != nil {
			return err
		}
		for _, friendID := range friendIDs {
			friend, err := txStore.FindOne(ctx, store.Filter{UUID: &friendID})
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			list, err := friend.FriendList()
			if err != nil {
				return err
			}
			if err := friend.SetFriendList(remove(list, id)); err != nil {
				return err
			}
			if err := txStore.Save(ctx, friend); err != nil {
				return err
			}
		}

		ok, err := txStore.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		return nil
	})
}

// ListFilter carries the optional listing predicates exposed on the
// users connection.
type ListFilter struct {
	IsActive      *bool
	NameContains  *string
	EmailContains *string
	Search        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListUsers returns the paginated users connection.
func (s *UserService) ListUsers(ctx context.Context, f ListFilter, args pagination.Args) (*pagination.Connection[models.User], error) {
	filter := store.Filter{
		IsActive:      f.IsActive,
		NameContains:  f.NameContains,
		EmailContains: f.EmailContains,
		Search:        f.Search,
		CreatedAfter:  f.CreatedAfter,
		CreatedBefore: f.CreatedBefore,
	}
	return pagination.Paginate(ctx, s.store.Source(filter), args, models.User.SortKey)
}

func remove(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
