// Package imagehost talks to a Lsky Pro compatible image host: it logs in for
// a bearer token and uploads local image files.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mrlokans/bookfetch/internal/config"
	"github.com/mrlokans/bookfetch/internal/tokenstore"
)

const (
	apiPrefix = "/api/v1"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// TokenStore is where the client caches its bearer token.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// UploadResult is what the host reports for a stored image.
type UploadResult struct {
	URL string
	ID  string
}

// Client is an image host API client. Upload requests are retried with
// exponential backoff on network errors and 5xx responses.
type Client struct {
	baseURL        string
	email          string
	password       string
	maxUploadBytes int64
	tokens         TokenStore
	httpClient     *retryablehttp.Client
}

// New builds a client from the image host settings. timeout bounds each
// individual attempt.
func New(cfg config.ImageHost, timeout time.Duration, tokens TokenStore) *Client {
	attempts := cfg.UploadRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.UploadBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = config.DefaultMaxUploadBytes
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = attempts - 1
	rc.RetryWaitMin = backoff
	rc.RetryWaitMax = backoff * time.Duration(math.Pow(2, float64(attempts)))
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Printf("[imagehost] retry %d: %s %s", attempt, req.Method, req.URL.Path)
		}
	}

	return &Client{
		baseURL:        NormalizeBaseURL(cfg.BaseURL),
		email:          strings.TrimSpace(cfg.Email),
		password:       strings.TrimSpace(cfg.Password),
		maxUploadBytes: maxBytes,
		tokens:         tokens,
		httpClient:     rc,
	}
}

// NormalizeBaseURL adds a missing https:// scheme and removes a trailing
// slash and any /api/v1 suffix, so that "img.example.com/api/v1/" and
// "https://img.example.com" address the same host.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	base = strings.TrimRight(base, "/")
	if i := strings.Index(base, apiPrefix); i >= 0 {
		base = base[:i]
	}
	return base
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + apiPrefix + path
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login exchanges the configured email and password for a token and stores
// it. A token that cannot be persisted is still returned.
func (c *Client) Login(ctx context.Context) (string, error) {
	return c.LoginWith(ctx, c.email, c.password)
}

// LoginWith is Login with explicit credentials.
func (c *Client) LoginWith(ctx context.Context, email, password string) (string, error) {
	if c.baseURL == "" || email == "" || password == "" {
		return "", ErrDisabled
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/tokens"), body)
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	var data struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &data); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if data.Token == "" {
		return "", &APIError{StatusCode: http.StatusOK, Message: "response carried no token"}
	}

	if c.tokens != nil {
		if err := c.tokens.Save(data.Token); err != nil {
			log.Printf("[imagehost] could not store token: %v", err)
		}
	}
	return data.Token, nil
}

// Upload sends the file at path. The file is validated first and a
// validation failure is returned without contacting the host. A cached token
// that the host rejects is discarded and replaced by a fresh login once.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResult, error) {
	if c.baseURL == "" || c.email == "" || c.password == "" {
		return nil, ErrDisabled
	}

	file, err := c.validate(path)
	if err != nil {
		return nil, err
	}

	token, cached, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	result, err := c.upload(ctx, token, file)
	if errors.Is(err, ErrInvalidToken) && cached {
		log.Printf("[imagehost] cached token rejected, logging in again")
		if c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				log.Printf("[imagehost] could not clear token: %v", err)
			}
		}
		if token, err = c.Login(ctx); err != nil {
			return nil, err
		}
		result, err = c.upload(ctx, token, file)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// token returns the cached token when there is one, otherwise logs in.
// cached reports which of the two happened.
func (c *Client) token(ctx context.Context) (string, bool, error) {
	if c.tokens != nil {
		stored, err := c.tokens.Load()
		if err == nil {
			return stored, true, nil
		}
		if !errors.Is(err, tokenstore.ErrNoToken) {
			log.Printf("[imagehost] ignoring unreadable token: %v", err)
		}
	}
	fresh, err := c.Login(ctx)
	return fresh, false, err
}

type imageFile struct {
	name        string
	contentType string
	data        []byte
}

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_.\-]`)

// validate checks existence, size and sniffed content type.
func (c *Client) validate(path string) (*imageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if info.Size() > c.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), c.maxUploadBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	name := unsafeNameChars.ReplaceAllString(filepath.Base(path), "")
	if name == "" || strings.Trim(name, ".") == "" {
		name = "image" + mt.Extension()
	}
	return &imageFile{name: name, contentType: mt.String(), data: data}, nil
}

func (c *Client) upload(ctx context.Context, token string, file *imageFile) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.name))
	header.Set("Content-Type", file.contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(file.data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	var data struct {
		URL   string          `json:"url"`
		ID    json.RawMessage `json:"id"`
		Key   string          `json:"key"`
		Links struct {
			URL string `json:"url"`
		} `json:"links"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, fmt.Errorf("upload %s: %w", file.name, err)
	}

	result := &UploadResult{
		URL: data.URL,
		ID:  strings.Trim(string(data.ID), `"`),
	}
	if result.URL == "" {
		result.URL = data.Links.URL
	}
	if result.ID == "" || result.ID == "null" {
		result.ID = data.Key
	}
	if result.URL == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "response carried no url"}
	}
	return result, nil
}

// do sends req and decodes the envelope's data into out.
func (c *Client) do(req *retryablehttp.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrInvalidToken, env.Message)
	}
	if resp.StatusCode != http.StatusOK {
		msg := env.Message
		if decodeErr != nil {
			msg = truncate(string(raw), 200)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
