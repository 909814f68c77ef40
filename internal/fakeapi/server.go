// Package fakeapi is an in-memory implementation of the to-do backend's
// HTTP contract. Tests run the client against it through httptest.
package fakeapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/todo-manager/v2/internal/types"
)

const Version = "2.0.0"

// Request is one call the server received, recorded before routing.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          map[string]any
}

type failure struct {
	status int
	body   string
}

type user struct {
	id       int64
	password string
}

type storedTask struct {
	types.Task
	owner int64
}

type storedCategory struct {
	types.Category
	owner int64
}

type Server struct {
	echo *echo.Echo

	mu         sync.Mutex
	secret     []byte
	generation int
	tokenTTL   time.Duration
	omitToken  bool
	users      map[string]user
	categories []storedCategory
	tasks      map[int64]*storedTask
	nextID     int64
	requests   []Request
	failures   map[string]failure
}

func New() *Server {
	s := &Server{
		echo:     echo.New(),
		secret:   []byte("fakeapi-secret"),
		tokenTTL: time.Hour,
		users:    make(map[string]user),
		tasks:    make(map[int64]*storedTask),
		failures: make(map[string]failure),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(s.record)

	s.echo.GET("/health", s.health)
	s.echo.POST("/register", s.register)
	s.echo.POST("/login", s.login)

	authed := s.echo.Group("", s.requireToken)
	authed.GET("/categories", s.listCategories)
	authed.POST("/categories", s.createCategory)
	authed.GET("/tasks", s.listTasks)
	authed.POST("/tasks", s.createTask)
	authed.PUT("/tasks/:id", s.updateTask)
	authed.DELETE("/tasks/:id", s.deleteTask)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count reports how many requests matched method and path exactly.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ResetRequests forgets the recorded requests but keeps all data.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// RevokeTokens invalidates every token issued so far, as a secret rotation
// or server-side expiry would.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// OmitToken makes /login answer 200 with no token in the body.
func (s *Server) OmitToken(omit bool) {
	s.mu.Lock()
	s.omitToken = omit
	s.mu.Unlock()
}

// Fail makes the next request to method+path answer status with body
// instead of being handled. An empty body sends no content.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	s.failures[method+" "+path] = failure{status: status, body: body}
	s.mu.Unlock()
}

// IssueToken returns a valid token for username, registering it if needed.
func (s *Server) IssueToken(username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		s.nextID++
		u = user{id: s.nextID, password: "password"}
		s.users[username] = u
	}
	return s.signLocked(u.id)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rec := Request{
			Method:        req.Method,
			Path:          req.URL.Path,
			Authorization: req.Header.Get("Authorization"),
			RequestID:     req.Header.Get("X-Request-ID"),
		}
		if req.Body != nil {
			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))
			if len(bytes.TrimSpace(raw)) > 0 {
				var body map[string]any
				if err := sonic.ConfigStd.Unmarshal(raw, &body); err == nil {
					rec.Body = body
				}
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		key := req.Method + " " + req.URL.Path
		f, failing := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if failing {
			if f.body == "" {
				return c.NoContent(f.status)
			}
			return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
		}
		return next(c)
	}
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return unauthorized(c, "Token is missing")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c, "Invalid token format")
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return unauthorized(c, "Invalid token")
		}

		uid, okUID := claims["user_id"].(float64)
		gen, okGen := claims["gen"].(float64)
		s.mu.Lock()
		current := s.generation
		s.mu.Unlock()
		if !okUID || !okGen || int(gen) != current {
			return unauthorized(c, "Token has expired")
		}
		c.Set("user_id", int64(uid))
		return next(c)
	}
}

func (s *Server) signLocked(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"gen":     s.generation,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, types.Health{
		Status:      "healthy",
		Version:     Version,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Database:    "healthy",
		Environment: "testing",
	})
}

func (s *Server) register(c echo.Context) error {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&creds); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if creds.Username == "" || creds.Password == "" {
		return badRequest(c, "Username and password are required")
	}
	if len(creds.Password) < 6 {
		return badRequest(c, "Password must be at least 6 characters")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[creds.Username]; exists {
		return badRequest(c, "User already exists")
	}
	s.nextID++
	s.users[creds.Username] = user{id: s.nextID, password: creds.Password}
	return c.JSON(http.StatusCreated, types.MessageResponse{Message: "User created successfully"})
}

func (s *Server) login(c echo.Context) error {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&creds); err != nil {
		return badRequest(c, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[creds.Username]
	if !ok || u.password != creds.Password {
		return c.JSON(http.StatusUnauthorized, types.MessageResponse{Error: "Invalid credentials"})
	}
	if s.omitToken {
		return c.JSON(http.StatusOK, types.MessageResponse{Message: "Login succeeded"})
	}
	token, err := s.signLocked(u.id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, types.MessageResponse{Error: "Login failed"})
	}
	return c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, types.MessageResponse{Error: msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, types.MessageResponse{Error: msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, types.MessageResponse{Error: msg})
}

func userID(c echo.Context) int64 {
	id, _ := c.Get("user_id").(int64)
	return id
}
