package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type S3Mock struct {
	mock.Mock
}

func (m *S3Mock) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *S3Mock) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*s3.DeleteObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

var fixedID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

func newTestGateway(t *testing.T, client *S3Mock, cfg S3Config) *S3Gateway {
	t.Helper()
	cfg.Bucket = "vidtube"
	cfg.Logger = zerolog.Nop()
	g, err := NewS3GatewayWithClient(client, cfg)
	require.NoError(t, err)
	g.idGen = func() uuid.UUID { return fixedID }
	return g
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestS3Gateway_UploadWithFilename(t *testing.T) {
	ctx := context.Background()
	client := new(S3Mock)
	g := newTestGateway(t, client, S3Config{Region: "eu-west-1"})

	local := writeTempFile(t, "my holiday.MP4", "video-bytes")

	var put *s3.PutObjectInput
	client.On("PutObject", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { put = args.Get(1).(*s3.PutObjectInput) }).
		Return(&s3.PutObjectOutput{}, nil).
		Once()

	res, err := g.Upload(ctx, local, Options{ResourceType: ResourceVideo, Folder: "vidtube/videos", UseFilename: true})
	require.NoError(t, err)

	assert.Equal(t, "vidtube/videos/my_holiday_11111111.mp4", res.Key)
	assert.Equal(t, "https://vidtube.s3.eu-west-1.amazonaws.com/vidtube/videos/my_holiday_11111111.mp4", res.SecureURL)
	assert.Equal(t, "vidtube", aws.ToString(put.Bucket))
	assert.Equal(t, "video/mp4", aws.ToString(put.ContentType))
	assert.Equal(t, int64(len("video-bytes")), aws.ToInt64(put.ContentLength))
	assert.Equal(t, "video", put.Metadata["resource-type"])
	client.AssertExpectations(t)
}

func TestS3Gateway_UploadRandomKeyAndPublicBase(t *testing.T) {
	ctx := context.Background()
	client := new(S3Mock)
	g := newTestGateway(t, client, S3Config{PublicBaseURL: "https://cdn.example.com/"})

	local := writeTempFile(t, "thumb.png", "png")
	client.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil).Once()

	res, err := g.Upload(ctx, local, Options{Folder: "thumbnails"})
	require.NoError(t, err)
	assert.Equal(t, "thumbnails/"+fixedID.String()+".png", res.Key)
	assert.True(t, strings.HasPrefix(res.SecureURL, "https://cdn.example.com/thumbnails/"))
}

func TestS3Gateway_UploadErrors(t *testing.T) {
	ctx := context.Background()
	client := new(S3Mock)
	g := newTestGateway(t, client, S3Config{Region: "us-east-1"})

	_, err := g.Upload(ctx, "", Options{})
	require.Error(t, err)

	_, err = g.Upload(ctx, filepath.Join(t.TempDir(), "missing.mp4"), Options{})
	require.Error(t, err)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)

	boom := errors.New("access denied")
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom).Once()
	_, err = g.Upload(ctx, writeTempFile(t, "a.jpg", "x"), Options{})
	require.ErrorIs(t, err, boom)
}

func TestS3Gateway_Remove(t *testing.T) {
	ctx := context.Background()
	client := new(S3Mock)
	g := newTestGateway(t, client, S3Config{Endpoint: "http://localhost:9000"})

	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Key) == "thumbnails/a.png" && aws.ToString(in.Bucket) == "vidtube"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, g.Remove(ctx, "http://localhost:9000/vidtube/thumbnails/a.png"))
	require.ErrorIs(t, g.Remove(ctx, "https://elsewhere.example.com/a.png"), ErrUnknownURL)
	client.AssertExpectations(t)
}

func TestNewS3GatewayWithClient_Validation(t *testing.T) {
	_, err := NewS3GatewayWithClient(nil, S3Config{Bucket: "b"})
	require.Error(t, err)

	_, err = NewS3GatewayWithClient(new(S3Mock), S3Config{})
	require.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("x.png", ResourceImage))
	assert.Equal(t, "video/mp4", contentType("x.unknownext", ResourceVideo))
	assert.Equal(t, "application/octet-stream", contentType("x", ResourceImage))
}
