package upload

import (
	"context"
	"errors"
)

type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

var ErrUnknownURL = errors.New("url does not belong to this gateway")

// Options mirror the classification an uploaded asset is stored under.
type Options struct {
	ResourceType ResourceType
	Folder       string
	// UseFilename keeps the local file name (plus a unique suffix) in the
	// object key instead of a random one.
	UseFilename bool
}

type Result struct {
	SecureURL string
	Key       string
}

// Gateway stores local files durably and hands back a stable URL.
type Gateway interface {
	Upload(ctx context.Context, localPath string, opts Options) (*Result, error)
	// Remove deletes an asset previously returned by Upload.
	Remove(ctx context.Context, url string) error
}
