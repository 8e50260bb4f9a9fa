package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/video/service"
)

type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type OwnerResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
	Email    string    `json:"email,omitempty"`
}

type VideoResponse struct {
	ID          uuid.UUID     `json:"id"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    float64       `json:"duration"`
	Owner       OwnerResponse `json:"owner"`
	IsPublished bool          `json:"isPublished"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

func toVideoResponse(v *models.Video) VideoResponse {
	owner := OwnerResponse{ID: v.OwnerID}
	if v.Owner != nil {
		owner.Username = v.Owner.Username
		owner.Email = v.Owner.Email
	}
	return VideoResponse{
		ID:          v.ID,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Owner:       owner,
		IsPublished: v.IsPublished,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toVideoListResponse(p *service.VideoPage) VideoListResponse {
	videos := make([]VideoResponse, 0, len(p.Videos))
	for i := range p.Videos {
		videos = append(videos, toVideoResponse(&p.Videos[i]))
	}
	return VideoListResponse{
		Videos: videos,
		Total:  p.Total,
		Page:   p.Page,
		Limit:  p.Limit,
	}
}
