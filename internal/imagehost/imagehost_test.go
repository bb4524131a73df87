package imagehost

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type fakeHost struct {
	logins      atomic.Int32
	uploads     atomic.Int32
	failUploads int32 // respond 503 to this many uploads first
	validToken  string
	// refuse answers uploads with 200 and "status": false
	refuse bool
}

func (f *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/v1/tokens":
		f.logins.Add(1)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.Write([]byte(`{"status": false, "message": "账号或密码错误", "data": {}}`))
			return
		}
		w.Write([]byte(`{"status": true, "message": "success", "data": {"token": "` + f.validToken + `"}}`))

	case "/api/v1/upload":
		n := f.uploads.Add(1)
		if n <= f.failUploads {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+f.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status": false, "message": "Unauthenticated."}`))
			return
		}
		if f.refuse {
			w.Write([]byte(`{"status": false, "message": "存储策略容量不足"}`))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		if header.Header.Get("Content-Type") != "image/png" || len(body) == 0 {
			w.Write([]byte(`{"status": false, "message": "bad file"}`))
			return
		}
		w.Write([]byte(`{"status": true, "message": "success", "data": {"url": "https://img.example/i/cover.png", "id": 42}}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, host *fakeHost) (*Client, *tokenstore.Store) {
	t.Helper()
	server := httptest.NewServer(host)
	t.Cleanup(server.Close)

	tokens := tokenstore.New(filepath.Join(t.TempDir(), "token.json"))
	cfg := config.ImageHost{
		Enabled:        true,
		BaseURL:        server.URL + "/api/v1/",
		Email:          "me@example.com",
		Password:       "secret",
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		UploadRetries:  3,
		UploadBackoff:  time.Millisecond,
	}
	return New(cfg, time.Second, tokens), tokens
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"img.example.com", "https://img.example.com"},
		{"https://img.example.com/", "https://img.example.com"},
		{"http://img.example.com/api/v1", "http://img.example.com"},
		{" img.example.com/api/v1/ ", "https://img.example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		})
	}
}

func TestUpload_LogsInWhenNoTokenCached(t *testing.T) {
	host := &fakeHost{validToken: "tok-1"}
	client, tokens := newTestClient(t, host)

	result, err := client.Upload(context.Background(), writeFile(t, "活着_cover.jpg", pngBytes))

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/i/cover.png", result.URL)
	assert.Equal(t, "42", result.ID)
	assert.EqualValues(t, 1, host.logins.Load())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)
}

func TestUpload_UsesCachedToken(t *testing.T) {
	host := &fakeHost{validToken: "tok-1"}
	client, tokens := newTestClient(t, host)
	require.NoError(t, tokens.Save("tok-1"))

	_, err := client.Upload(context.Background(), writeFile(t, "c.png", pngBytes))

	require.NoError(t, err)
	assert.Zero(t, host.logins.Load())
}

func TestUpload_RejectedTokenTriggersOneRelogin(t *testing.T) {
	host := &fakeHost{validToken: "tok-fresh"}
	client, tokens := newTestClient(t, host)
	require.NoError(t, tokens.Save("tok-stale"))

	result, err := client.Upload(context.Background(), writeFile(t, "c.png", pngBytes))

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/i/cover.png", result.URL)
	assert.EqualValues(t, 1, host.logins.Load())
	assert.EqualValues(t, 2, host.uploads.Load())

	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-fresh", stored)
}

func TestUpload_RetriesServerErrors(t *testing.T) {
	host := &fakeHost{validToken: "tok-1", failUploads: 2}
	client, tokens := newTestClient(t, host)
	require.NoError(t, tokens.Save("tok-1"))

	result, err := client.Upload(context.Background(), writeFile(t, "c.png", pngBytes))

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.EqualValues(t, 3, host.uploads.Load())
}

func TestUpload_GivesUpAfterConfiguredAttempts(t *testing.T) {
	host := &fakeHost{validToken: "tok-1", failUploads: 10}
	client, tokens := newTestClient(t, host)
	require.NoError(t, tokens.Save("tok-1"))

	result, err := client.Upload(context.Background(), writeFile(t, "c.png", pngBytes))

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.EqualValues(t, 3, host.uploads.Load())
}

func TestUpload_RefusalIsNotRetried(t *testing.T) {
	host := &fakeHost{validToken: "tok-1", refuse: true}
	client, tokens := newTestClient(t, host)
	require.NoError(t, tokens.Save("tok-1"))

	result, err := client.Upload(context.Background(), writeFile(t, "c.png", pngBytes))

	assert.Nil(t, result)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "存储策略容量不足", apiErr.Message)
	assert.EqualValues(t, 1, host.uploads.Load())
}

func TestUpload_ValidationFailuresNeverReachTheHost(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.png")

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		limit   int64
		wantErr error
	}{
		{"empty", func(t *testing.T) string { return writeFile(t, "e.png", nil) }, 0, ErrEmptyFile},
		{"not an image", func(t *testing.T) string { return writeFile(t, "t.png", []byte("plain text pretending")) }, 0, ErrNotImage},
		{"too large", func(t *testing.T) string { return writeFile(t, "big.png", pngBytes) }, 16, ErrFileTooLarge},
		{"missing", func(t *testing.T) string { return missing }, 0, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{validToken: "tok-1"}
			client, _ := newTestClient(t, host)
			if tt.limit > 0 {
				client.maxUploadBytes = tt.limit
			}

			result, err := client.Upload(context.Background(), tt.path(t))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Zero(t, host.logins.Load())
			assert.Zero(t, host.uploads.Load())
		})
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	host := &fakeHost{validToken: "tok-1"}
	client, tokens := newTestClient(t, host)

	token, err := client.LoginWith(context.Background(), "me@example.com", "wrong")

	assert.Empty(t, token)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "账号或密码错误", apiErr.Message)

	_, err = tokens.Load()
	assert.ErrorIs(t, err, tokenstore.ErrNoToken)
}

func TestUpload_NotConfigured(t *testing.T) {
	client := New(config.ImageHost{Enabled: true}, time.Second, nil)

	_, err := client.Upload(context.Background(), "/nonexistent")

	assert.ErrorIs(t, err, ErrDisabled)
}
