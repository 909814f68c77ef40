package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todo-manager/v2/internal/auth"
	"github.com/todo-manager/v2/internal/fakeapi"
	"github.com/todo-manager/v2/internal/types"
)

type fixture struct {
	fake    *fakeapi.Server
	session *auth.Session
	client  *ApiClient
	auth    *AuthService
	cats    *CategoryService
	tasks   *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	session := auth.NewSession(nil)
	client := NewApiClient(srv.URL, session, 5*time.Second)
	return &fixture{
		fake:    fake,
		session: session,
		client:  client,
		auth:    NewAuthService(client),
		cats:    NewCategoryService(client),
		tasks:   NewTaskService(client),
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	creds := auth.Credentials{Username: "irina", Password: "secret1"}
	_, err := f.auth.Register(ctx, creds)
	require.NoError(t, err)
	token, err := f.auth.Login(ctx, creds)
	require.NoError(t, err)
	require.NoError(t, f.session.Start(token))
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creds := auth.Credentials{Username: "irina", Password: "secret1"}

	msg, err := f.auth.Register(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", msg)

	_, err = f.auth.Register(ctx, creds)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "User already exists", apiErr.Message)

	token, err := f.auth.Login(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginBadCredentialsIsNotSessionExpiry(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), auth.Credentials{Username: "nobody", Password: "whatever"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestLoginWithoutTokenFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creds := auth.Credentials{Username: "irina", Password: "secret1"}
	_, err := f.auth.Register(ctx, creds)
	require.NoError(t, err)

	f.fake.OmitToken(true)
	token, err := f.auth.Login(ctx, creds)
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Empty(t, token)
}

func TestRegisterAcceptsAnySuccessBody(t *testing.T) {
	bodies := map[string]string{
		"empty":    "",
		"not json": "created",
		"json":     `{"message":"User created successfully"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.fake.Fail(http.MethodPost, "/register", http.StatusCreated, body)

			msg, err := f.auth.Register(context.Background(), auth.Credentials{Username: "irina", Password: "secret1"})
			require.NoError(t, err)
			if name == "json" {
				assert.Equal(t, "User created successfully", msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestCategoryListAndCreate(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	cats, err := f.cats.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
	assert.NotNil(t, cats)

	created, err := f.cats.CreateCategory(ctx, types.NewCategory{Name: "Home", Description: "chores"})
	require.NoError(t, err)
	assert.Equal(t, "Home", created.Name)

	cats, err = f.cats.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, created.ID, cats[0].ID)
	assert.Equal(t, "chores", cats[0].Description)
}

func TestCreateTaskSendsNullOptionalFields(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	id, err := f.tasks.CreateTask(ctx, types.TaskPayload{Title: "Buy milk", CategoryName: "Home"})
	require.NoError(t, err)
	assert.NotZero(t, id)

	var body map[string]any
	for _, r := range f.fake.Requests() {
		if r.Method == http.MethodPost && r.Path == "/tasks" {
			body = r.Body
		}
	}
	require.NotNil(t, body)
	for _, key := range []string{"due_date", "estimated_hours", "priority"} {
		v, present := body[key]
		assert.True(t, present, key)
		assert.Nil(t, v, key)
	}
	_, hasStatus := body["status"]
	assert.False(t, hasStatus)
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	hours := 1.5
	priority := "High"
	id, err := f.tasks.CreateTask(ctx, types.TaskPayload{
		Title:          "Buy milk",
		CategoryName:   "Home",
		EstimatedHours: &hours,
		Priority:       &priority,
	})
	require.NoError(t, err)

	tasks, err := f.tasks.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.StatusPending, tasks[0].Status)
	require.NotNil(t, tasks[0].Category)
	assert.Equal(t, "Home", *tasks[0].Category)

	require.NoError(t, f.tasks.CompleteTask(ctx, id))
	require.NoError(t, f.tasks.CompleteTask(ctx, id))

	tasks, err = f.tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.True(t, tasks[0].Completed())

	status := types.StatusInProgress
	require.NoError(t, f.tasks.UpdateTask(ctx, id, types.TaskPayload{
		Title:        "Buy oat milk",
		CategoryName: "Home",
		Status:       &status,
	}))
	tasks, err = f.tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", tasks[0].Title)
	assert.Equal(t, types.StatusInProgress, tasks[0].Status)
	assert.Nil(t, tasks[0].EstimatedHours)

	require.NoError(t, f.tasks.DeleteTask(ctx, id))
	tasks, err = f.tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = f.tasks.DeleteTask(ctx, id)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestRevokedTokenIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.fake.RevokeTokens()

	_, err := f.cats.ListCategories(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}
