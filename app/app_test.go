package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andrewbenington/group-mix/controller"
	"github.com/andrewbenington/group-mix/db"
	"github.com/andrewbenington/group-mix/dialect"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/lock"
	"github.com/andrewbenington/group-mix/merge"
	"github.com/andrewbenington/group-mix/requests"
	"github.com/andrewbenington/group-mix/spotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var topTracks = map[string][]string{
	"alice": {"t1", "t2", "t3"},
	"bob":   {"t2", "t3", "t4"},
}

// fakeSpotify treats the authorization code as the user name.
type fakeSpotify struct {
	mu        sync.Mutex
	windows   []spotify.Window
	playlists []string
	added     [][]string
}

func (f *fakeSpotify) AuthURL(state string, forcePrompt bool) string {
	return fmt.Sprintf("https://accounts.example.com/authorize?state=%s&show_dialog=%t", state, forcePrompt)
}

func (f *fakeSpotify) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if _, ok := topTracks[code]; !ok {
		return nil, &oauth2.RetrieveError{
			Response:  &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"},
			ErrorCode: "invalid_grant",
		}
	}
	return &oauth2.Token{AccessToken: code, RefreshToken: "refresh-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeSpotify) Refresh(_ context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: token.AccessToken, Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeSpotify) Profile(_ context.Context, token *oauth2.Token) (spotify.Profile, error) {
	name := token.AccessToken
	return spotify.Profile{ID: name, DisplayName: strings.ToUpper(name[:1]) + name[1:]}, nil
}

func (f *fakeSpotify) TopTracks(_ context.Context, token *oauth2.Token, window spotify.Window, limit int) ([]spotify.Track, error) {
	f.mu.Lock()
	f.windows = append(f.windows, window)
	f.mu.Unlock()

	tracks := []spotify.Track{}
	for _, id := range topTracks[token.AccessToken] {
		tracks = append(tracks, spotify.Track{ID: id, URI: "spotify:track:" + id, Name: id, Artists: []string{"Artist"}})
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (f *fakeSpotify) CreatePlaylist(_ context.Context, _ *oauth2.Token, ownerID string, name string, _ string, _ bool) (spotify.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlists = append(f.playlists, name)
	id := fmt.Sprintf("pl%d", len(f.playlists))
	return spotify.Playlist{ID: id, URL: "https://open.spotify.com/playlist/" + id}, nil
}

func (f *fakeSpotify) AddTracks(_ context.Context, _ *oauth2.Token, _ string, uris []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, uris)
	return uris, nil
}

type testServer struct {
	*httptest.Server
	remote *fakeSpotify
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	dbConn, err := db.Open(ctx, dialect.SQLite, filepath.Join(t.TempDir(), "group-mix.db"))
	require.NoError(t, err)

	remote := &fakeSpotify{}
	a := &App{}
	require.NoError(t, a.Wire(dbConn, dialect.SQLite, lock.NewKeyedMutex(), remote))
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(withMiddleware(a.Router))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, remote: remote}
}

// browser keeps cookies and stops at every redirect.
func (s *testServer) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, client *http.Client, method string, target string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func stateOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "true", loc.Query().Get("show_dialog"))
	return loc.Query().Get("state")
}

func TestGroupFlow(t *testing.T) {
	s := newTestServer(t)
	host := s.browser(t)

	resp := do(t, host, "POST", s.URL+"/room", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[controller.CreateRoomResponse](t, resp)
	assert.True(t, strings.HasSuffix(created.JoinURL, "/join/"+created.RoomID.String()))
	roomURL := s.URL + "/room/" + created.RoomID.String()

	join := func(client *http.Client, member string) {
		resp := do(t, client, "GET", s.URL+"/join/"+created.RoomID.String(), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		state := stateOf(t, resp)
		assert.Equal(t, created.RoomID.String(), state)

		resp = do(t, client, "GET", s.URL+"/callback?code="+member+"&state="+state, "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/room/"+created.RoomID.String(), resp.Header.Get("Location"))
	}

	join(host, "alice")

	resp = do(t, host, "POST", roomURL+"/merge", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.KindInsufficientMembers, decode[requests.ErrorResponse](t, resp).Kind)

	join(s.browser(t), "bob")

	resp = do(t, host, "GET", roomURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[controller.RoomSummary](t, resp)
	assert.Equal(t, []string{"Alice", "Bob"}, summary.Members)
	assert.True(t, summary.CanMerge)

	resp = do(t, host, "POST", roomURL+"/merge", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	playlist := decode[merge.Playlist](t, resp)
	assert.Equal(t, "Merged Playlist (2 users)", playlist.Name)
	want := []string{"spotify:track:t2", "spotify:track:t3", "spotify:track:t1", "spotify:track:t4"}
	var uris []string
	var counts []int
	for _, track := range playlist.Tracks {
		uris = append(uris, track.URI)
		counts = append(counts, track.Count)
	}
	assert.Equal(t, want, uris)
	assert.Equal(t, []int{2, 2, 1, 1}, counts)
	assert.Equal(t, [][]string{want}, s.remote.added)

	resp = do(t, host, "POST", roomURL+"/merge", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errs.KindAlreadyMerged, decode[requests.ErrorResponse](t, resp).Kind)

	resp = do(t, host, "DELETE", roomURL, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, host, "GET", roomURL, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[controller.RoomSummary](t, resp).Members)
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)

	t.Run("new browser gets a new room", func(t *testing.T) {
		client := s.browser(t)
		resp := do(t, client, "GET", s.URL+"/login", "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		first := stateOf(t, resp)
		assert.NotEmpty(t, first)

		// the cookie brings the browser back to the same room
		resp = do(t, client, "GET", s.URL+"/login", "")
		assert.Equal(t, first, stateOf(t, resp))
	})

	t.Run("callback without state uses the cookie", func(t *testing.T) {
		client := s.browser(t)
		resp := do(t, client, "GET", s.URL+"/new-session", "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		roomPath := strings.TrimPrefix(resp.Header.Get("Location"), "/join/")

		resp = do(t, client, "GET", s.URL+"/callback?code=alice", "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/room/"+roomPath, resp.Header.Get("Location"))
	})

	errorCases := []struct {
		name   string
		target string
		status int
		kind   errs.Kind
	}{
		{"no room at all", "/callback?code=alice", http.StatusBadRequest, errs.KindMissingRoom},
		{"login refused", "/callback?error=access_denied", http.StatusUnauthorized, errs.KindInvalidGrant},
		{"bad join id", "/join/not-a-room", http.StatusBadRequest, errs.KindInvalidRoom},
		{"bad login id", "/login?room_id=nope", http.StatusBadRequest, errs.KindInvalidRoom},
		{"bad room id", "/room/nope", http.StatusBadRequest, errs.KindInvalidRoom},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s.browser(t), "GET", s.URL+tt.target, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.kind, decode[requests.ErrorResponse](t, resp).Kind)
		})
	}

	t.Run("rejected code", func(t *testing.T) {
		client := s.browser(t)
		resp := do(t, client, "GET", s.URL+"/login", "")
		state := stateOf(t, resp)

		resp = do(t, client, "GET", s.URL+"/callback?code=mallory&state="+state, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, errs.KindInvalidGrant, decode[requests.ErrorResponse](t, resp).Kind)
	})
}

func TestSoloFlow(t *testing.T) {
	s := newTestServer(t)
	client := s.browser(t)

	resp := do(t, client, "POST", s.URL+"/solo/top-tracks", "")
	assert.Equal(t, errs.KindMissingRoom, decode[requests.ErrorResponse](t, resp).Kind)

	resp = do(t, client, "GET", s.URL+"/solo", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	soloID := stateOf(t, resp)

	resp = do(t, client, "GET", s.URL+"/callback?code=alice&state="+soloID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	collection := decode[controller.CollectionResponse](t, resp)
	assert.True(t, collection.Solo)
	assert.Equal(t, "Alice", collection.User)
	assert.Equal(t, []string{"t1 by Artist", "t2 by Artist", "t3 by Artist"}, collection.Tracks)

	// solo contributions are never stored
	resp = do(t, client, "GET", s.URL+"/room/"+soloID, "")
	summary := decode[controller.RoomSummary](t, resp)
	assert.True(t, summary.Solo)
	assert.Empty(t, summary.Members)
	assert.False(t, summary.CanMerge)

	resp = do(t, client, "POST", s.URL+"/solo/top-tracks", `{"time_range":"short_term","limit":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[controller.CollectionResponse](t, resp).Tracks, 2)
	assert.Equal(t, spotify.ShortTerm, s.remote.windows[len(s.remote.windows)-1])

	resp = do(t, client, "POST", s.URL+"/solo/top-tracks", `{"time_range":"forever"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, client, "POST", s.URL+"/solo/playlist", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, client, "POST", s.URL+"/solo/playlist", `{"name":"Mine","time_range":"long_term"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	playlist := decode[controller.SoloPlaylistResponse](t, resp)
	assert.Equal(t, "Mine", playlist.Name)
	assert.Equal(t, []string{"Mine"}, s.remote.playlists)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)
	client := s.browser(t)

	resp := do(t, client, "GET", s.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, client, "GET", s.URL+"/version", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v struct {
		Store string `json:"store"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "sqlite", v.Store)
}
