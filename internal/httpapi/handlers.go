package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/social"
	"github.com/romariotrain/vidtube/internal/video/domain"
	"github.com/romariotrain/vidtube/internal/video/query"
	"github.com/romariotrain/vidtube/internal/video/service"
)

// VideoService is the part of service.Service the handlers depend on.
type VideoService interface {
	ListVideos(ctx context.Context, q query.VideoQuery) (*service.VideoPage, error)
	PublishVideo(ctx context.Context, caller uuid.UUID, in service.PublishInput) (*models.Video, error)
	GetVideo(ctx context.Context, rawID string) (*models.Video, error)
	UpdateVideo(ctx context.Context, caller uuid.UUID, rawID string, in service.UpdateInput) (*models.Video, error)
	DeleteVideo(ctx context.Context, caller uuid.UUID, rawID string) error
	TogglePublishStatus(ctx context.Context, caller uuid.UUID, rawID string) (*models.Video, error)
}

type Options struct {
	// TempDir receives uploaded parts until the request completes.
	TempDir        string
	MaxUploadBytes int64
}

type Handler struct {
	videos VideoService
	social *social.Service
	opts   Options
}

func New(videos VideoService, soc *social.Service, opts Options) *Handler {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Handler{videos: videos, social: soc, opts: opts}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q, err := query.Build(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.videos.ListVideos(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, toVideoListResponse(page), "Videos fetched successfully")
}

func (h *Handler) PublishVideo(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := h.parseMultipart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	var in service.PublishInput
	in.Title, _ = formValue(form.form, "title")
	in.Description, _ = formValue(form.form, "description")
	if in.VideoFilePath, err = saveFilePart(form.form, "videoFile", form.dir); err != nil {
		writeError(w, r, err)
		return
	}
	if in.ThumbnailPath, err = saveFilePart(form.form, "thumbnail", form.dir); err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.videos.PublishVideo(r.Context(), CallerFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toVideoResponse(v), "Video published successfully")
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	v, err := h.videos.GetVideo(r.Context(), r.PathValue("videoId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toVideoResponse(v), "Video fetched successfully")
}

// UpdateVideo accepts either a multipart form (with an optional thumbnail
// file) or a JSON body with title and description.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		form, cleanup, err := h.parseMultipart(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer cleanup()

		if v, ok := formValue(form.form, "title"); ok {
			in.Title = &v
		}
		if v, ok := formValue(form.form, "description"); ok {
			in.Description = &v
		}
		if in.ThumbnailPath, err = saveFilePart(form.form, "thumbnail", form.dir); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		defer r.Body.Close()

		var req UpdateVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, models.InvalidArgument("Invalid JSON body"))
			return
		}
		in.Title = req.Title
		in.Description = req.Description
	}

	v, err := h.videos.UpdateVideo(r.Context(), CallerFrom(r.Context()), r.PathValue("videoId"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toVideoResponse(v), "Video updated successfully")
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.videos.DeleteVideo(r.Context(), CallerFrom(r.Context()), r.PathValue("videoId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "Video deleted successfully")
}

func (h *Handler) TogglePublishStatus(w http.ResponseWriter, r *http.Request) {
	v, err := h.videos.TogglePublishStatus(r.Context(), CallerFrom(r.Context()), r.PathValue("videoId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, toVideoResponse(v), domain.StatusMessage(v.IsPublished))
}

// NotImplemented serves an operation of the social resources.
func (h *Handler) NotImplemented(op social.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, h.social.Handle(r.Context(), op))
	}
}

type multipartForm struct {
	form *multipart.Form
	dir  string
}

// parseMultipart parses a bounded multipart body and prepares a private
// directory for its files. cleanup removes everything written for the request.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipartForm, func(), error) {
	if limit := h.opts.MaxUploadBytes; limit > 0 {
		if r.ContentLength > limit {
			return nil, nil, &http.MaxBytesError{Limit: limit}
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, models.InvalidArgument("Invalid multipart body")
	}

	dir, err := os.MkdirTemp(h.opts.TempDir, "vidtube-*")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, fmt.Errorf("create upload dir: %w", err)
	}

	logger := hlog.FromRequest(r)
	cleanup := func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn().Err(err).Msg("failed to remove multipart spool files")
		}
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove upload dir")
		}
	}

	return &multipartForm{form: r.MultipartForm, dir: dir}, cleanup, nil
}
