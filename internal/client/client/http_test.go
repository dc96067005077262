package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/devsync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	err     error
	cleared int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.err
}

func (f *fakeTokens) ClearToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenStore) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL+"/api", 2*time.Second, tokens)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/", u.String())

	u, err = parseBaseURL("example.com:9000/v1?x=1#f")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9000/v1/", u.String())
}

func TestFetchPage_EncodesQueryAndToken(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	var gotAuth string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, models.Page{Data: []models.Developer{{ID: 1, Name: "A"}}, Total: 11})
	}, &fakeTokens{token: "tkn"})

	page, err := c.FetchPage(context.Background(), models.Query{Page: 2, Size: 5, Name: " ann ", Employment: models.EmploymentOther})
	require.NoError(t, err)

	assert.Equal(t, "/api/developers", gotPath)
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "5", gotQuery.Get("size"))
	assert.Equal(t, "ann", gotQuery.Get("name"))
	assert.Equal(t, "false", gotQuery.Get("fullStack"))
	assert.Equal(t, "Bearer tkn", gotAuth)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, []models.Developer{{ID: 1, Name: "A"}}, page.Data)
}

func TestFetchPage_OmitsEmptyFilters(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"total": 0})
	}, nil)

	page, err := c.FetchPage(context.Background(), models.Query{})
	require.NoError(t, err)
	assert.False(t, gotQuery.Has("name"))
	assert.False(t, gotQuery.Has("fullStack"))
	assert.Empty(t, gotAuth)
	assert.NotNil(t, page.Data)
}

func TestCreateUpdateDelete(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in models.DeveloperInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			writeJSON(w, http.StatusCreated, in.WithID(7))
		case http.MethodPut:
			var d models.Developer
			require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
			writeJSON(w, http.StatusOK, d)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}, nil)
	ctx := context.Background()

	created, err := c.Create(ctx, models.DeveloperInput{Name: "Ann", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Ann", created.Name)

	created.Name = "Ann B"
	updated, err := c.Update(ctx, 7, *created)
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.Name)

	require.NoError(t, c.Delete(ctx, 7))

	assert.Equal(t, []string{
		"POST /api/developers",
		"PUT /api/developers/7",
		"DELETE /api/developers/7",
	}, calls)
}

func TestUploadAvatar_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/developers/3/avatar", r.URL.Path)
		f, hdr, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		writeJSON(w, http.StatusOK, models.Developer{ID: 3, PhotoURL: "avatars/abc"})
	}, nil)

	d, err := c.UploadAvatar(context.Background(), 3, "me.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "avatars/abc", d.PhotoURL)
}

func TestPublicURL(t *testing.T) {
	c, err := NewHTTPClient("http://host:8080/api", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://host:8080/public/avatars/abc", c.PublicURL("avatars/abc"))
	assert.Equal(t, "", c.PublicURL(""))
	assert.Equal(t, "https://cdn/x.png", c.PublicURL("https://cdn/x.png"))
}

func TestLoginRegisterPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var cr credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
			if cr.Password != "secret" {
				writeJSON(w, http.StatusUnauthorized, messageBody{Message: "bad credentials"})
				return
			}
			writeJSON(w, http.StatusOK, tokenBody{Token: "jwt-" + cr.Username})
		case "/api/auth/register":
			writeJSON(w, http.StatusConflict, messageBody{Message: "user exists"})
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		}
	}, nil)
	ctx := context.Background()

	tok, err := c.Login(ctx, "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-ann", tok)

	_, err = c.Login(ctx, "ann", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)

	err = c.Register(ctx, "ann", "secret")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusConflict, ve.Status)
	assert.Equal(t, "user exists", ve.Message)

	require.NoError(t, c.Ping(ctx))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name: "validation", status: http.StatusBadRequest, body: `{"message":"age must be between 18 and 100"}`,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "age must be between 18 and 100", ve.Message)
				assert.False(t, IsUnavailable(err))
			},
		},
		{
			name: "not found without body", status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "Not Found", ve.Message)
			},
		},
		{
			name: "server error", status: http.StatusInternalServerError, body: `{"message":"db down"}`,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, 500, se.Status)
				assert.Equal(t, "db down", se.Message)
				assert.False(t, IsUnavailable(err))
			},
		},
		{
			name: "plain text body", status: http.StatusBadGateway, body: "upstream gone",
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "upstream gone", se.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, nil)
			_, err := c.FetchPage(context.Background(), models.Query{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestUnauthorized_ClearsToken(t *testing.T) {
	tokens := &fakeTokens{token: "expired"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, messageBody{Message: "invalid token"})
	}, tokens)

	_, err := c.FetchPage(context.Background(), models.Query{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, tokens.cleared)
	assert.Empty(t, tokens.token)
}

func TestTokenStoreError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}, &fakeTokens{err: errors.New("disk")})

	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnavailable(err))
}

func TestUnavailable_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := NewHTTPClient(addr+"/api", time.Second, nil)
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), models.Query{})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestUnavailable_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewHTTPClient(srv.URL+"/api", 50*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = c.Create(context.Background(), models.DeveloperInput{Name: "x"})
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestCanceledIsNotUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page{})
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, models.Query{})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsUnavailable(err))
}
