package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// UserStorePref records a user's preferred store brands in priority order.
// Preferred stores win over the bare zip default when resolving store scope.
type UserStorePref struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_user_store_pref"`
	StoreKey  enums.StoreKey `gorm:"column:store_key;type:store_key;not null;uniqueIndex:uq_user_store_pref"`
	Rank      int            `gorm:"column:rank;not null;default:0"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides GORM's pluralization.
func (UserStorePref) TableName() string { return "user_store_prefs" }
