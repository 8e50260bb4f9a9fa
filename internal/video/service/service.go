package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/upload"
	"github.com/romariotrain/vidtube/internal/video/domain"
	"github.com/romariotrain/vidtube/internal/video/query"
	"github.com/romariotrain/vidtube/internal/video/repository"
)

var (
	videoUpload = upload.Options{
		ResourceType: upload.ResourceVideo,
		Folder:       "vidtube/videos",
		UseFilename:  true,
	}
	thumbnailUpload = upload.Options{
		ResourceType: upload.ResourceImage,
		Folder:       "thumbnails",
	}
)

const cleanupTimeout = 30 * time.Second

type PublishInput struct {
	Title         string
	Description   string
	VideoFilePath string
	ThumbnailPath string
}

// UpdateInput describes a partial update. Nil or blank fields keep their
// stored value.
type UpdateInput struct {
	Title         *string
	Description   *string
	ThumbnailPath string
}

type VideoPage struct {
	Videos []models.Video
	Total  int64
	Page   int
	Limit  int
}

type Service struct {
	repo     repository.VideoRepository
	uploader upload.Gateway
	logger   zerolog.Logger
	clock    func() time.Time
	idGen    func() uuid.UUID
	spawn    func(func())
}

func New(repo repository.VideoRepository, uploader upload.Gateway, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		uploader: uploader,
		logger:   logger.With().Str("component", "video_service").Logger(),
		clock:    time.Now,
		idGen:    uuid.New,
		spawn:    func(f func()) { go f() },
	}
}

// ListVideos returns one page of videos matching q together with the total
// number of matches.
func (s *Service) ListVideos(ctx context.Context, q query.VideoQuery) (*VideoPage, error) {
	videos, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	total, err := s.repo.Count(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}

	if videos == nil {
		videos = []models.Video{}
	}

	return &VideoPage{
		Videos: videos,
		Total:  total,
		Page:   q.Page,
		Limit:  q.Limit,
	}, nil
}

// PublishVideo uploads both assets and only then persists the video, so a
// failed upload never leaves a record behind. Assets uploaded before a
// failure are removed in the background.
func (s *Service) PublishVideo(ctx context.Context, caller uuid.UUID, in PublishInput) (*models.Video, error) {
	if caller == uuid.Nil {
		return nil, models.Unauthorized("Unauthorized request")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, models.InvalidArgument("Title and description are required")
	}
	if in.VideoFilePath == "" || in.ThumbnailPath == "" {
		return nil, models.InvalidArgument("Video file and thumbnail are required")
	}

	videoRes, err := s.uploader.Upload(ctx, in.VideoFilePath, videoUpload)
	if err != nil {
		return nil, models.UploadFailed("Failed to upload video file", err)
	}

	thumbRes, err := s.uploader.Upload(ctx, in.ThumbnailPath, thumbnailUpload)
	if err != nil {
		s.discard(ctx, videoRes.SecureURL)
		return nil, models.UploadFailed("Failed to upload thumbnail", err)
	}

	now := s.clock()
	v := &models.Video{
		ID:          s.idGen(),
		VideoFile:   videoRes.SecureURL,
		Thumbnail:   thumbRes.SecureURL,
		Title:       title,
		Description: description,
		Duration:    models.PlaceholderDuration,
		OwnerID:     caller,
		IsPublished: true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		s.discard(ctx, videoRes.SecureURL, thumbRes.SecureURL)
		return nil, fmt.Errorf("create video: %w", err)
	}

	s.logger.Info().
		Str("video_id", v.ID.String()).
		Str("owner_id", caller.String()).
		Msg("video published")

	return v, nil
}

// GetVideo returns the video with its owner resolved.
func (s *Service) GetVideo(ctx context.Context, rawID string) (*models.Video, error) {
	id, ok := models.ParseID(rawID)
	if !ok {
		return nil, models.InvalidArgument("Invalid video ID")
	}
	return s.find(ctx, id)
}

func (s *Service) UpdateVideo(ctx context.Context, caller uuid.UUID, rawID string, in UpdateInput) (*models.Video, error) {
	v, err := s.loadOwned(ctx, caller, rawID, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		v.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		v.Description = strings.TrimSpace(*in.Description)
	}

	var uploaded string
	if in.ThumbnailPath != "" {
		res, err := s.uploader.Upload(ctx, in.ThumbnailPath, thumbnailUpload)
		if err != nil {
			return nil, models.UploadFailed("Failed to upload thumbnail", err)
		}
		uploaded = res.SecureURL
		v.Thumbnail = uploaded
	}

	updated, err := s.repo.Update(ctx, v, caller)
	if err != nil {
		if uploaded != "" {
			s.discard(ctx, uploaded)
		}
		return nil, writeError(err, domain.ActionUpdate)
	}
	return updated, nil
}

func (s *Service) DeleteVideo(ctx context.Context, caller uuid.UUID, rawID string) error {
	v, err := s.loadOwned(ctx, caller, rawID, domain.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, v.ID, caller); err != nil {
		return writeError(err, domain.ActionDelete)
	}

	s.logger.Info().
		Str("video_id", v.ID.String()).
		Str("owner_id", caller.String()).
		Msg("video deleted")
	return nil
}

// TogglePublishStatus flips the publish flag of the video.
func (s *Service) TogglePublishStatus(ctx context.Context, caller uuid.UUID, rawID string) (*models.Video, error) {
	v, err := s.loadOwned(ctx, caller, rawID, domain.ActionUpdate)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.TogglePublished(ctx, v.ID, caller)
	if err != nil {
		return nil, writeError(err, domain.ActionUpdate)
	}
	return updated, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFound("Video not found")
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return v, nil
}

// loadOwned runs the checks shared by every mutation: identifier syntax,
// existence and ownership, in that order.
func (s *Service) loadOwned(ctx context.Context, caller uuid.UUID, rawID string, action domain.Action) (*models.Video, error) {
	id, ok := models.ParseID(rawID)
	if !ok {
		return nil, models.InvalidArgument("Invalid video ID")
	}

	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(v, caller, action); err != nil {
		return nil, err
	}
	return v, nil
}

// discard removes orphaned uploads without holding up the caller. Failures
// are only logged.
func (s *Service) discard(ctx context.Context, urls ...string) {
	ctx = context.WithoutCancel(ctx)
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
		defer cancel()

		for _, u := range urls {
			if err := s.uploader.Remove(ctx, u); err != nil {
				s.logger.Warn().
					Err(err).
					Str("url", u).
					Msg("failed to remove orphaned upload")
			}
		}
	})
}

// writeError maps a failed conditional write. The record may have been
// deleted or changed between the ownership check and the write.
func writeError(err error, action domain.Action) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.NotFound("Video not found")
	case errors.Is(err, models.ErrForbidden):
		return models.Forbidden(fmt.Sprintf("You are not authorized to %s this video", action))
	case errors.Is(err, models.ErrConflict):
		return models.Conflict("Video was modified concurrently, retry the request")
	default:
		return fmt.Errorf("%s video: %w", action, err)
	}
}
