package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/dmitrijs2005/devsync/internal/common"
)

var _ Client = (*HTTPClient)(nil)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	defaultTimeout = 10 * time.Second
	userAgent      = "devsync-cli"
)

// HTTPClient implements Client over the REST API.
type HTTPClient struct {
	baseURL *url.URL
	origin  *url.URL
	http    *http.Client
	tokens  TokenStore
}

// NewHTTPClient builds a client for the API rooted at baseURL. A zero timeout
// falls back to 10s. tokens may be nil for unauthenticated use.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenStore) (*HTTPClient, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: base,
		origin:  &url.URL{Scheme: base.Scheme, Host: base.Host},
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

type messageBody struct {
	Message string `json:"message"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

func (c *HTTPClient) FetchPage(ctx context.Context, q models.Query) (*models.Page, error) {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	if name := strings.TrimSpace(q.Name); name != "" {
		values.Set("name", name)
	}
	if fs := q.Employment.FullStack(); fs != nil {
		values.Set("fullStack", strconv.FormatBool(*fs))
	}
	rel := &url.URL{Path: "developers", RawQuery: values.Encode()}

	var page models.Page
	if err := c.doJSON(ctx, http.MethodGet, rel, nil, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []models.Developer{}
	}
	return &page, nil
}

func (c *HTTPClient) Create(ctx context.Context, in models.DeveloperInput) (*models.Developer, error) {
	var d models.Developer
	if err := c.doJSON(ctx, http.MethodPost, &url.URL{Path: "developers"}, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) Update(ctx context.Context, id int64, d models.Developer) (*models.Developer, error) {
	var out models.Developer
	if err := c.doJSON(ctx, http.MethodPut, developerPath(id, ""), d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, developerPath(id, ""), nil, nil)
}

// UploadAvatar sends the image as the multipart field "avatar".
func (c *HTTPClient) UploadAvatar(ctx context.Context, id int64, filename string, r io.Reader) (*models.Developer, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var d models.Developer
	if err := c.doURL(ctx, http.MethodPost, developerPath(id, "avatar"), mw.FormDataContentType(), &buf, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PublicURL turns a stored photo key into a URL served by the backend.
func (c *HTTPClient) PublicURL(photoURL string) string {
	if photoURL == "" || strings.Contains(photoURL, "://") {
		return photoURL
	}
	return c.origin.ResolveReference(&url.URL{Path: "/public/" + strings.TrimPrefix(photoURL, "/")}).String()
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var out tokenBody
	err := c.doJSON(ctx, http.MethodPost, &url.URL{Path: "auth/login"}, credentials{username, password}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &ServerError{Status: http.StatusOK, Message: "empty token"}
	}
	return out.Token, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) error {
	return c.doJSON(ctx, http.MethodPost, &url.URL{Path: "auth/register"}, credentials{username, password}, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, &url.URL{Path: "health"}, nil, nil)
}

func developerPath(id int64, suffix string) *url.URL {
	p := "developers/" + strconv.FormatInt(id, 10)
	if suffix != "" {
		p += "/" + suffix
	}
	return &url.URL{Path: p}
}

func (c *HTTPClient) doJSON(ctx context.Context, method string, rel *url.URL, in, dest any) error {
	if in == nil {
		return c.doURL(ctx, method, rel, "", nil, dest)
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.doURL(ctx, method, rel, "application/json", bytes.NewReader(body), dest)
}

func (c *HTTPClient) doURL(ctx context.Context, method string, rel *url.URL, contentType string, body io.Reader, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return c.mapStatus(ctx, resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapTransportError classifies a request that got no response. Caller
// cancellation is passed through so superseded requests are not reported
// as an outage.
func (c *HTTPClient) mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *HTTPClient) mapStatus(ctx context.Context, resp *http.Response) error {
	msg := readMessage(resp)
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.tokens != nil {
			_ = c.tokens.ClearToken(ctx)
		}
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return &ServerError{Status: resp.StatusCode, Message: msg}
	default:
		return &ValidationError{Status: resp.StatusCode, Message: msg}
	}
}

func readMessage(resp *http.Response) string {
	var body messageBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode)
}
