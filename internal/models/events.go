package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

const (
	VideoPublishedEvent         = "video.published"
	VideoUpdatedEvent           = "video.updated"
	VideoDeletedEvent           = "video.deleted"
	VideoVisibilityChangedEvent = "video.visibility_changed"
)

// VideoEvent records a committed change to a video. It is written to the
// outbox in the same transaction as the change itself.
type VideoEvent struct {
	eventID     uuid.UUID
	eventType   string
	videoID     uuid.UUID
	ownerID     uuid.UUID
	title       string
	isPublished bool
	version     int64
	occurredAt  time.Time
}

func NewVideoEvent(eventType string, v *Video) *VideoEvent {
	return &VideoEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		videoID:     v.ID,
		ownerID:     v.OwnerID,
		title:       v.Title,
		isPublished: v.IsPublished,
		version:     v.Version,
		occurredAt:  time.Now().UTC(),
	}
}

func (e *VideoEvent) EventID() uuid.UUID     { return e.eventID }
func (e *VideoEvent) EventType() string      { return e.eventType }
func (e *VideoEvent) AggregateID() uuid.UUID { return e.videoID }
func (e *VideoEvent) OccurredAt() time.Time  { return e.occurredAt }

func (e *VideoEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID     uuid.UUID `json:"event_id"`
		EventType   string    `json:"event_type"`
		VideoID     uuid.UUID `json:"video_id"`
		OwnerID     uuid.UUID `json:"owner_id"`
		Title       string    `json:"title"`
		IsPublished bool      `json:"is_published"`
		Version     int64     `json:"version"`
		OccurredAt  time.Time `json:"occurred_at"`
	}{
		EventID:     e.eventID,
		EventType:   e.eventType,
		VideoID:     e.videoID,
		OwnerID:     e.ownerID,
		Title:       e.title,
		IsPublished: e.isPublished,
		Version:     e.version,
		OccurredAt:  e.occurredAt,
	})
}
