package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/canberkoguz/socialgraph/internal/pagination"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the core identity and profile record.
//
// FriendUUIDs holds the symmetric friendship set: A is in B's set iff
// B is in A's set. The invariant is enforced at the write boundary
// (FriendshipService), never re-derived on read. ReferredBy is a weak
// reference; the referral links across all users form a forest,
// checked for cycles at link creation.
type User struct {
	UUID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"uuid"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	ReferredBy   *uuid.UUID     `gorm:"type:uuid;index" json:"referred_by,omitempty"`
	ReferralCode string         `gorm:"size:32;not null;uniqueIndex" json:"referral_code"`
	FriendUUIDs  datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"-"`
	CreatedAt    time.Time      `gorm:"not null;index:idx_users_sort,priority:1" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SortKey returns the record's position in the global listing order.
func (u User) SortKey() pagination.SortKey {
	return pagination.SortKey{CreatedAt: u.CreatedAt, UUID: u.UUID}
}

// FriendList decodes the stored friendship set. The result is never
// nil so it can be used directly as an exhaustive membership filter.
func (u User) FriendList() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if len(u.FriendUUIDs) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(u.FriendUUIDs, &ids); err != nil {
		return nil, fmt.Errorf("corrupt friend list for user %s: %w", u.UUID, err)
	}
	return ids, nil
}

// SetFriendList replaces the stored friendship set.
func (u *User) SetFriendList(ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode friend list: %w", err)
	}
	u.FriendUUIDs = datatypes.JSON(raw)
	return nil
}

// HasFriend reports membership in the friendship set.
func (u User) HasFriend(id uuid.UUID) bool {
	ids, err := u.FriendList()
	if err != nil {
		return false
	}
	for _, f := range ids {
		if f == id {
			return true
		}
	}
	return false
}
