package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by S3Gateway.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for MinIO. Path-style
	// addressing is used when it is set.
	Endpoint string
	// PublicBaseURL is the CDN or bucket URL that object keys are appended to.
	PublicBaseURL string
	Logger        zerolog.Logger
}

type S3Gateway struct {
	client  S3API
	bucket  string
	baseURL string
	idGen   func() uuid.UUID
	logger  zerolog.Logger
}

var _ Gateway = (*S3Gateway)(nil)

func NewS3Gateway(ctx context.Context, cfg S3Config) (*S3Gateway, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3GatewayWithClient(client, cfg)
}

func NewS3GatewayWithClient(client S3API, cfg S3Config) (*S3Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}

	return &S3Gateway{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		idGen:   uuid.New,
		logger:  cfg.Logger.With().Str("component", "s3_gateway").Logger(),
	}, nil
}

func (g *S3Gateway) Upload(ctx context.Context, localPath string, opts Options) (*Result, error) {
	if localPath == "" {
		return nil, fmt.Errorf("s3 upload: empty local path")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("s3 upload: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("s3 upload: stat %s: %w", localPath, err)
	}

	key := g.objectKey(filepath.Base(localPath), opts)

	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(localPath, opts.ResourceType)),
		Metadata: map[string]string{
			"resource-type": string(resourceType(opts)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: put %s: %w", key, err)
	}

	g.logger.Debug().
		Str("key", key).
		Int64("size", info.Size()).
		Msg("object uploaded")

	return &Result{SecureURL: g.baseURL + "/" + key, Key: key}, nil
}

func (g *S3Gateway) Remove(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, g.baseURL+"/")
	if !ok || key == "" {
		return ErrUnknownURL
	}

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}

	g.logger.Debug().Str("key", key).Msg("object removed")
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func (g *S3Gateway) objectKey(filename string, opts Options) string {
	ext := strings.ToLower(filepath.Ext(filename))
	id := g.idGen().String()

	name := id + ext
	if opts.UseFilename {
		stem := unsafeKeyChars.ReplaceAllString(strings.TrimSuffix(filename, filepath.Ext(filename)), "_")
		stem = strings.Trim(stem, "_.")
		if stem != "" {
			name = stem + "_" + id[:8] + ext
		}
	}

	return path.Join(strings.Trim(opts.Folder, "/"), name)
}

func publicBaseURL(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func resourceType(opts Options) ResourceType {
	if opts.ResourceType == "" {
		return ResourceImage
	}
	return opts.ResourceType
}

func contentType(filename string, rt ResourceType) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	switch rt {
	case ResourceVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
