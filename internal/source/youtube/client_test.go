package youtube

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosync/internal/cache"
	"videosync/internal/httpx"
)

type fakeAPI struct {
	mux      *http.ServeMux
	server   *httptest.Server
	requests atomic.Int64
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, fn http.HandlerFunc) {
	f.mux.HandleFunc(pattern, fn)
}

func newTestClient(t *testing.T, api *fakeAPI, cfg Config) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	cfg.APIBaseURL = api.server.URL
	if cfg.CaptionsURL == "" {
		cfg.CaptionsURL = api.server.URL + "/timedtext"
	}

	httpClient := httpx.New(httpx.Config{Timeout: 5 * time.Second}, logger)
	return New(cfg, httpClient, cache.NewMemory(ctx, time.Minute), logger)
}

func TestResolveUploadsPlaylist(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UC123", r.URL.Query().Get("id"))
		assert.Equal(t, "contentDetails", r.URL.Query().Get("part"))
		w.Write([]byte(`{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`))
	})
	client := newTestClient(t, api, Config{})

	playlistID := client.ResolveUploadsPlaylist(context.Background(), "UC123")
	assert.Equal(t, "UU123", playlistID)
}

func TestResolveUploadsPlaylist_Cached(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/channels", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`))
	})
	client := newTestClient(t, api, Config{})

	ctx := context.Background()
	client.ResolveUploadsPlaylist(ctx, "UC123")
	client.ResolveUploadsPlaylist(ctx, "UC123")

	assert.Equal(t, int64(1), api.requests.Load())
}

func TestResolveUploadsPlaylist_ServerError(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/channels", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	client := newTestClient(t, api, Config{})

	assert.Empty(t, client.ResolveUploadsPlaylist(context.Background(), "UC123"))
}

func TestResolveUploadsPlaylist_EmptyItems(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/channels", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	})
	client := newTestClient(t, api, Config{})

	assert.Empty(t, client.ResolveUploadsPlaylist(context.Background(), "UC123"))
}

func TestResolveUploadsPlaylist_MissingInputs(t *testing.T) {
	api := newFakeAPI(t)
	client := newTestClient(t, api, Config{})

	assert.Empty(t, client.ResolveUploadsPlaylist(context.Background(), ""))
	assert.Equal(t, int64(0), api.requests.Load())
}

func TestFetchVideos_Paginates(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UU123", r.URL.Query().Get("playlistId"))
		assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
		switch r.URL.Query().Get("pageToken") {
		case "":
			w.Write([]byte(`{
				"nextPageToken": "page2",
				"items": [
					{"snippet":{"title":"First","publishedAt":"2024-01-02T10:00:00Z","channelTitle":"MyChannel","thumbnails":{"high":{"url":"https://i.ytimg.com/hi/1.jpg"}}},"contentDetails":{"videoId":"vid-1"}},
					{"snippet":{"title":"Second"},"contentDetails":{"videoId":"vid-2"}}
				]
			}`))
		case "page2":
			w.Write([]byte(`{
				"items": [
					{"snippet":{"title":"Third","thumbnails":{"default":{"url":"https://i.ytimg.com/def/3.jpg"}}},"contentDetails":{"videoId":"vid-3"}}
				]
			}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	client := newTestClient(t, api, Config{})

	videos, err := client.FetchVideos(context.Background(), "UU123", 3)
	require.NoError(t, err)
	require.Len(t, videos, 3)

	assert.Equal(t, "vid-1", videos[0].VideoID)
	assert.Equal(t, "First", videos[0].Title)
	assert.Equal(t, "MyChannel", videos[0].ChannelTitle)
	assert.Equal(t, "https://i.ytimg.com/hi/1.jpg", videos[0].ThumbnailURL)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), videos[0].PublishedAt)

	// default thumbnail used when no high-res variant exists
	assert.Equal(t, "https://i.ytimg.com/def/3.jpg", videos[2].ThumbnailURL)
}

func TestFetchVideos_MaxPagesStopsEarly(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nextPageToken":"more","items":[{"snippet":{"title":"V"},"contentDetails":{"videoId":"vid"}}]}`))
	})
	client := newTestClient(t, api, Config{})

	videos, err := client.FetchVideos(context.Background(), "UU123", 2)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
	assert.Equal(t, int64(2), api.requests.Load())
}

func TestFetchVideos_SkipsItemsWithoutVideoID(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"items": [
				{"snippet":{"title":"Private video"},"contentDetails":{}},
				{"snippet":{"title":"Kept"},"contentDetails":{"videoId":"vid-1"}}
			]
		}`))
	})
	client := newTestClient(t, api, Config{})

	videos, err := client.FetchVideos(context.Background(), "UU123", 1)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "vid-1", videos[0].VideoID)
}

func TestFetchVideos_PageFailureReturnsPartial(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "page2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"nextPageToken":"page2","items":[{"snippet":{"title":"V"},"contentDetails":{"videoId":"vid-1"}}]}`))
	})
	client := newTestClient(t, api, Config{})

	videos, err := client.FetchVideos(context.Background(), "UU123", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch page 1")
	require.Len(t, videos, 1)
	assert.Equal(t, "vid-1", videos[0].VideoID)
}

func TestFetchVideos_ServedFromCache(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"snippet":{"title":"V"},"contentDetails":{"videoId":"vid-1"}}]}`))
	})
	client := newTestClient(t, api, Config{})

	ctx := context.Background()
	first, err := client.FetchVideos(ctx, "UU123", 1)
	require.NoError(t, err)

	second, err := client.FetchVideos(ctx, "UU123", 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), api.requests.Load())
}

func TestFetchVideos_PartialResultNotCached(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "page2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"nextPageToken":"page2","items":[{"snippet":{"title":"V"},"contentDetails":{"videoId":"vid-1"}}]}`))
	})
	client := newTestClient(t, api, Config{})

	ctx := context.Background()
	_, err := client.FetchVideos(ctx, "UU123", 3)
	require.Error(t, err)

	_, err = client.FetchVideos(ctx, "UU123", 3)
	require.Error(t, err)
	assert.Equal(t, int64(4), api.requests.Load())
}
