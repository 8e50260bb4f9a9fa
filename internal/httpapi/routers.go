package httpapi

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/romariotrain/vidtube/internal/social"
)

func NewRouter(h *Handler, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /videos", h.ListVideos)
	mux.HandleFunc("POST /videos", RequireUser(h.PublishVideo))
	mux.HandleFunc("GET /videos/{videoId}", h.GetVideo)
	mux.HandleFunc("PATCH /videos/{videoId}", RequireUser(h.UpdateVideo))
	mux.HandleFunc("DELETE /videos/{videoId}", RequireUser(h.DeleteVideo))
	mux.HandleFunc("PATCH /videos/{videoId}/toggle", RequireUser(h.TogglePublishStatus))

	stubs := []struct {
		pattern string
		op      social.Operation
	}{
		{"GET /comments/{videoId}", social.GetVideoComments},
		{"POST /comments/{videoId}", social.AddComment},
		{"PATCH /comments/c/{commentId}", social.UpdateComment},
		{"DELETE /comments/c/{commentId}", social.DeleteComment},

		{"POST /likes/toggle/v/{videoId}", social.ToggleVideoLike},
		{"POST /likes/toggle/c/{commentId}", social.ToggleCommentLike},
		{"POST /likes/toggle/t/{tweetId}", social.ToggleTweetLike},
		{"GET /likes/videos", social.GetLikedVideos},

		{"POST /tweets", social.CreateTweet},
		{"GET /tweets/user/{userId}", social.GetUserTweets},
		{"PATCH /tweets/{tweetId}", social.UpdateTweet},
		{"DELETE /tweets/{tweetId}", social.DeleteTweet},

		{"POST /playlists", social.CreatePlaylist},
		{"GET /playlists/user/{userId}", social.GetUserPlaylists},
		{"GET /playlists/{playlistId}", social.GetPlaylistByID},
		{"PATCH /playlists/add/{videoId}/{playlistId}", social.AddVideoToPlaylist},
		{"PATCH /playlists/remove/{videoId}/{playlistId}", social.RemoveVideoFromPlaylist},
		{"DELETE /playlists/{playlistId}", social.DeletePlaylist},
		{"PATCH /playlists/{playlistId}", social.UpdatePlaylist},
	}
	for _, s := range stubs {
		mux.HandleFunc(s.pattern, RequireUser(h.NotImplemented(s.op)))
	}

	var handler http.Handler = mux
	handler = hlog.RequestIDHandler("req_id", "X-Request-Id")(handler)
	handler = hlog.RemoteAddrHandler("ip")(handler)
	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(handler)
	handler = hlog.NewHandler(logger.With().Str("component", "httpapi").Logger())(handler)

	return handler
}
