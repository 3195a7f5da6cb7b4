package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey grants programmatic upload access. Only the Argon2id hash is stored;
// the plaintext is shown once at creation. Prefix is the first characters of
// the key, kept for lookup and display.
type APIKey struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID      uuid.UUID  `gorm:"column:org_id;type:uuid;not null;index"`
	Name       string     `gorm:"column:name;not null"`
	Prefix     string     `gorm:"column:prefix;not null;uniqueIndex"`
	Hash       string     `gorm:"column:hash;not null"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
