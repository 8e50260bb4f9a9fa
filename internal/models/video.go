package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceholderDuration is stored for every video until real media inspection exists.
const PlaceholderDuration = 5

type Video struct {
	ID          uuid.UUID `db:"id"`
	VideoFile   string    `db:"video_file"`
	Thumbnail   string    `db:"thumbnail"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Duration    float64   `db:"duration"`
	OwnerID     uuid.UUID `db:"owner_id"`
	IsPublished bool      `db:"is_published"`
	Version     int64     `db:"version"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// Owner holds the resolved display fields of OwnerID. Nil when the
	// store did not resolve it.
	Owner *Owner `db:"-"`
}

// Owner is the minimal public view of a user.
type Owner struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`
	Email    string    `db:"email"`
}

// OwnedBy reports whether caller is the owner of v. The comparison is done on
// parsed identifiers so textual variants of the same id are equal.
func (v *Video) OwnedBy(caller uuid.UUID) bool {
	return caller != uuid.Nil && v.OwnerID == caller
}

// ParseID parses a client supplied identifier. The nil UUID is rejected.
func ParseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
