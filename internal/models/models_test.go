package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesCode(t *testing.T) {
	cause := errors.New("s3 down")
	err := fmt.Errorf("publish: %w", UploadFailed("Failed to upload video file", cause))

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Failed to upload video file", MessageOf(err, "fallback"))
}

func TestMessageOf_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", MessageOf(errors.New("boom"), "fallback"))
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "canonical", raw: id.String(), ok: true},
		{name: "upper case", raw: strings.ToUpper(id.String()), ok: true},
		{name: "urn", raw: id.URN(), ok: true},
		{name: "braces", raw: "{" + id.String() + "}", ok: true},
		{name: "nil uuid", raw: uuid.Nil.String(), ok: false},
		{name: "garbage", raw: "not-an-id", ok: false},
		{name: "empty", raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseID(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, id, got)
			}
		})
	}
}

func TestVideo_OwnedBy(t *testing.T) {
	owner := uuid.New()
	v := &Video{OwnerID: owner}

	parsed, ok := ParseID(strings.ToUpper(owner.String()))
	require.True(t, ok)

	assert.True(t, v.OwnedBy(parsed))
	assert.False(t, v.OwnedBy(uuid.New()))
	assert.False(t, (&Video{}).OwnedBy(uuid.Nil))
}

func TestVideoEvent_MarshalJSON(t *testing.T) {
	v := &Video{ID: uuid.New(), OwnerID: uuid.New(), Title: "T", IsPublished: true, Version: 2}
	e := NewVideoEvent(VideoPublishedEvent, v)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, VideoPublishedEvent, got["event_type"])
	assert.Equal(t, v.ID.String(), got["video_id"])
	assert.Equal(t, true, got["is_published"])
	assert.Equal(t, v.ID, e.AggregateID())
}
