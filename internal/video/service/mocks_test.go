package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/upload"
	"github.com/romariotrain/vidtube/internal/video/query"
)

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) List(ctx context.Context, q query.VideoQuery) ([]models.Video, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) Count(ctx context.Context, f query.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StoreMock) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) Create(ctx context.Context, v *models.Video) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *StoreMock) Update(ctx context.Context, v *models.Video, caller uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, v, caller)
	if r := args.Get(0); r != nil {
		return r.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) TogglePublished(ctx context.Context, id, caller uuid.UUID) (*models.Video, error) {
	args := m.Called(ctx, id, caller)
	if v := args.Get(0); v != nil {
		return v.(*models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) Delete(ctx context.Context, id, caller uuid.UUID) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}

type UploaderMock struct {
	mock.Mock
}

func (m *UploaderMock) Upload(ctx context.Context, localPath string, opts upload.Options) (*upload.Result, error) {
	args := m.Called(ctx, localPath, opts)
	if v := args.Get(0); v != nil {
		return v.(*upload.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UploaderMock) Remove(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
