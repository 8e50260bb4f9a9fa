// Package social holds the comment, like, tweet and playlist operations.
// None of them is implemented yet; every operation reports
// models.ErrNotImplemented so callers see an explicit contract.
package social

import (
	"context"

	"github.com/romariotrain/vidtube/internal/models"
)

type Operation string

const (
	GetVideoComments Operation = "getVideoComments"
	AddComment       Operation = "addComment"
	UpdateComment    Operation = "updateComment"
	DeleteComment    Operation = "deleteComment"

	ToggleVideoLike   Operation = "toggleVideoLike"
	ToggleCommentLike Operation = "toggleCommentLike"
	ToggleTweetLike   Operation = "toggleTweetLike"
	GetLikedVideos    Operation = "getLikedVideos"

	CreateTweet   Operation = "createTweet"
	GetUserTweets Operation = "getUserTweets"
	UpdateTweet   Operation = "updateTweet"
	DeleteTweet   Operation = "deleteTweet"

	CreatePlaylist          Operation = "createPlaylist"
	GetUserPlaylists        Operation = "getUserPlaylists"
	GetPlaylistByID         Operation = "getPlaylistById"
	AddVideoToPlaylist      Operation = "addVideoToPlaylist"
	RemoveVideoFromPlaylist Operation = "removeVideoFromPlaylist"
	DeletePlaylist          Operation = "deletePlaylist"
	UpdatePlaylist          Operation = "updatePlaylist"
)

// Operations lists every operation of the package.
var Operations = []Operation{
	GetVideoComments, AddComment, UpdateComment, DeleteComment,
	ToggleVideoLike, ToggleCommentLike, ToggleTweetLike, GetLikedVideos,
	CreateTweet, GetUserTweets, UpdateTweet, DeleteTweet,
	CreatePlaylist, GetUserPlaylists, GetPlaylistByID, AddVideoToPlaylist,
	RemoveVideoFromPlaylist, DeletePlaylist, UpdatePlaylist,
}

type Service struct{}

func New() *Service {
	return &Service{}
}

// Handle runs op. Until the resources are designed it always fails with
// models.ErrNotImplemented.
func (s *Service) Handle(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return models.NotImplemented(string(op) + " is not implemented yet")
}
