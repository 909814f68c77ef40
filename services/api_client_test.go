package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newEchoServer(t *testing.T, register func(e *echo.Echo)) *httptest.Server {
	t.Helper()
	e := echo.New()
	register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestCallAPISendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	srv := newEchoServer(t, func(e *echo.Echo) {
		e.POST("/categories", func(c echo.Context) error {
			gotAuth = c.Request().Header.Get("Authorization")
			gotRequestID = c.Request().Header.Get("X-Request-ID")
			gotContentType = c.Request().Header.Get("Content-Type")
			return c.JSON(http.StatusCreated, map[string]any{"id": 7, "name": "Home"})
		})
	})

	client := NewApiClient(srv.URL+"/", staticToken("abc"), time.Second)
	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	err := client.CallAPI(context.Background(), "/categories", http.MethodPost, map[string]string{"name": "Home"}, &out, "fallback")
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Home", out.Name)
}

func TestCallAPIWithoutTokenSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	srv := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/health", func(c echo.Context) error {
			gotAuth = c.Request().Header.Get("Authorization")
			return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "version": "2.0.0"})
		})
	})

	client := NewApiClient(srv.URL, staticToken(""), time.Second)
	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "2.0.0", health.Version)
}

func TestCallAPIErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error key", `{"error":"Category already exists"}`, "Category already exists"},
		{"message key", `{"message":"Nope"}`, "Nope"},
		{"both keys prefer error", `{"error":"first","message":"second"}`, "first"},
		{"no keys", `{}`, "fallback"},
		{"not json", `<html>oops</html>`, "fallback"},
		{"empty body", ``, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newEchoServer(t, func(e *echo.Echo) {
				e.POST("/categories", func(c echo.Context) error {
					return c.Blob(http.StatusBadRequest, echo.MIMEApplicationJSON, []byte(tc.body))
				})
			})
			client := NewApiClient(srv.URL, nil, time.Second)
			err := client.CallAPI(context.Background(), "/categories", http.MethodPost, map[string]string{}, nil, "fallback")

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.False(t, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestCallAPIUnauthorized(t *testing.T) {
	srv := newEchoServer(t, func(e *echo.Echo) {
		e.GET("/tasks", func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token has expired"})
		})
	})
	client := NewApiClient(srv.URL, staticToken("stale"), time.Second)

	_, err := NewTaskService(client).ListTasks(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCallAPINetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewApiClient(url, nil, time.Second)
	err := client.CallAPI(context.Background(), "/tasks", http.MethodGet, nil, nil, "fallback")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestCallAPITimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := NewApiClient(srv.URL, nil, 50*time.Millisecond)
	err := client.CallAPI(context.Background(), "/tasks", http.MethodGet, nil, nil, "fallback")
	assert.True(t, errors.Is(err, ErrNetwork))
}
