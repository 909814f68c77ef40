package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/todo-manager/v2/internal/auth"
	"github.com/todo-manager/v2/internal/types"
	"github.com/todo-manager/v2/services"
)

const (
	MsgRegistered         = "Registration successful! Please login."
	MsgSessionExpired     = "Session expired. Please log in again."
	MsgNetwork            = "Network error. Please try again."
	MsgBackendUnreachable = "Cannot connect to backend"
	MsgLoginRequired      = "Please log in first."
)

type ViewState int

const (
	LoggedOut ViewState = iota
	LoggedIn
)

func (s ViewState) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// View is what the SessionClient drives. Every method may be called from
// any goroutine.
type View interface {
	ShowAuth()
	ShowMain()
	ShowMessage(msg string)
	ShowError(msg string)
	// Confirm asks the user a yes/no question. onResult may block, so the
	// view must not call it on its event loop.
	Confirm(title, message string, onResult func(confirmed bool))
	RenderCategories(rows []CategoryRow)
	RenderTasks(rows []TaskRow)
	ClearAuthForms()
	ClearCategoryForm()
	ClearTaskForm()
	OpenEditor(form TaskForm)
	CloseEditor()
}

type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]types.Category, error)
	CreateCategory(ctx context.Context, category types.NewCategory) (*types.Category, error)
}

type TaskAPI interface {
	ListTasks(ctx context.Context) ([]types.Task, error)
	CreateTask(ctx context.Context, task types.TaskPayload) (int64, error)
	UpdateTask(ctx context.Context, id int64, task types.TaskPayload) error
	CompleteTask(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error
}

type HealthChecker interface {
	Health(ctx context.Context) (*types.Health, error)
}

type Deps struct {
	Auth       auth.Service
	Categories CategoryAPI
	Tasks      TaskAPI
	Health     HealthChecker
	Session    *auth.Session
}

// SessionClient turns user intents into backend calls and re-renders the
// affected list from the server after every successful mutation.
//
// Each list has a reload sequence. A reload renders only if no newer
// reload of the same list started while it was in flight, so a slow,
// stale response can never overwrite a newer one. Logout advances both
// sequences, discarding whatever is still in flight.
type SessionClient struct {
	deps Deps
	view View
	log  *log.Entry

	categorySeq atomic.Uint64
	taskSeq     atomic.Uint64
	renderMu    sync.Mutex

	mu       sync.Mutex
	state    ViewState
	editing  int64
	editOpen bool
}

func NewSessionClient(deps Deps, view View) *SessionClient {
	return &SessionClient{
		deps: deps,
		view: view,
		log:  log.WithField("component", "session_client"),
	}
}

func (c *SessionClient) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start shows the main view when a persisted session survives, and the
// auth view otherwise.
func (c *SessionClient) Start(ctx context.Context) error {
	if c.deps.Session.Restore() {
		c.log.Info("Restored persisted session")
		return c.enterMain(ctx)
	}
	c.setState(LoggedOut)
	c.view.ShowAuth()
	return nil
}

// CheckHealth probes the backend once; it only informs the user.
func (c *SessionClient) CheckHealth(ctx context.Context) error {
	health, err := c.deps.Health.Health(ctx)
	if err != nil {
		c.log.Warnf("Backend connection failed: %v", err)
		c.view.ShowError(MsgBackendUnreachable)
		return err
	}
	c.log.WithFields(log.Fields{
		"status":  health.Status,
		"version": health.Version,
	}).Info("Backend health")
	return nil
}

func (c *SessionClient) Register(ctx context.Context, username, password string) error {
	_, err := c.deps.Auth.Register(ctx, auth.Credentials{Username: username, Password: password})
	if err != nil {
		c.log.Infof("Registration failed: %v", err)
		c.view.ShowError(userMessage(err, "Registration failed"))
		return err
	}
	c.view.ShowMessage(MsgRegistered)
	c.view.ShowAuth()
	return nil
}

// Login is the only LoggedOut → LoggedIn transition. A response without a
// token leaves the session untouched.
func (c *SessionClient) Login(ctx context.Context, username, password string) error {
	token, err := c.deps.Auth.Login(ctx, auth.Credentials{Username: username, Password: password})
	if err != nil {
		c.log.Infof("Login failed: %v", err)
		c.view.ShowError(userMessage(err, "Login failed"))
		return err
	}
	if err := c.deps.Session.Start(token); err != nil {
		if !c.deps.Session.Authenticated() {
			c.view.ShowError("Login failed")
			return err
		}
		c.log.Warnf("Session will not survive a restart: %v", err)
	}
	c.log.Infof("Login successful for user: %s", username)
	return c.enterMain(ctx)
}

func (c *SessionClient) enterMain(ctx context.Context) error {
	c.setState(LoggedIn)
	c.view.ClearAuthForms()
	c.view.ShowMain()

	var g errgroup.Group
	g.Go(func() error { return c.LoadCategories(ctx) })
	g.Go(func() error { return c.LoadTasks(ctx) })
	return g.Wait()
}

// Logout forgets the session and returns to the auth view. No request is
// made.
func (c *SessionClient) Logout() {
	c.logout()
}

func (c *SessionClient) logout() (wasLoggedIn bool) {
	c.categorySeq.Add(1)
	c.taskSeq.Add(1)
	if err := c.deps.Session.End(); err != nil {
		c.log.Warnf("Failed to end session: %v", err)
	}

	c.mu.Lock()
	wasLoggedIn = c.state == LoggedIn
	c.state = LoggedOut
	c.editOpen = false
	c.mu.Unlock()

	c.renderMu.Lock()
	c.view.RenderCategories(nil)
	c.view.RenderTasks(nil)
	c.renderMu.Unlock()

	c.view.CloseEditor()
	c.view.ClearCategoryForm()
	c.view.ClearTaskForm()
	c.view.ClearAuthForms()
	c.view.ShowAuth()
	return wasLoggedIn
}

func (c *SessionClient) expireSession() {
	if c.logout() {
		c.log.Info("Session expired, logged out")
		c.view.ShowError(MsgSessionExpired)
	}
}

// LoadCategories rebuilds the category list from the server. On failure
// other than 401 the previous render stays as it was.
func (c *SessionClient) LoadCategories(ctx context.Context) error {
	if !c.deps.Session.Authenticated() {
		return ErrNotAuthenticated
	}
	seq := c.categorySeq.Add(1)
	categories, err := c.deps.Categories.ListCategories(ctx)
	if err != nil {
		return c.loadFailed(&c.categorySeq, seq, "categories", err)
	}
	c.renderLatest(&c.categorySeq, seq, "categories", func() {
		c.view.RenderCategories(CategoryRows(categories))
	})
	return nil
}

// LoadTasks mirrors LoadCategories for the task list.
func (c *SessionClient) LoadTasks(ctx context.Context) error {
	if !c.deps.Session.Authenticated() {
		return ErrNotAuthenticated
	}
	seq := c.taskSeq.Add(1)
	tasks, err := c.deps.Tasks.ListTasks(ctx)
	if err != nil {
		return c.loadFailed(&c.taskSeq, seq, "tasks", err)
	}
	c.renderLatest(&c.taskSeq, seq, "tasks", func() {
		c.view.RenderTasks(TaskRows(tasks))
	})
	return nil
}

func (c *SessionClient) renderLatest(current *atomic.Uint64, seq uint64, list string, render func()) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if current.Load() != seq {
		c.log.Debugf("Discarding stale %s reload %d", list, seq)
		return
	}
	render()
}

func (c *SessionClient) loadFailed(current *atomic.Uint64, seq uint64, list string, err error) error {
	if current.Load() != seq {
		c.log.Debugf("Ignoring failure of stale %s reload %d: %v", list, seq, err)
		return err
	}
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.expireSession()
	case errors.Is(err, services.ErrNetwork):
		c.log.Warnf("Error loading %s: %v", list, err)
		c.view.ShowError(MsgNetwork)
	default:
		c.log.Warnf("Error loading %s: %v", list, err)
	}
	return err
}

func (c *SessionClient) CreateCategory(ctx context.Context, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.rejected(invalid("name", "Category name is required"))
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	category := types.NewCategory{Name: name, Description: strings.TrimSpace(description)}
	if _, err := c.deps.Categories.CreateCategory(ctx, category); err != nil {
		return c.mutationFailed(err, "Failed to create category")
	}
	c.view.ClearCategoryForm()
	return c.LoadCategories(ctx)
}

func (c *SessionClient) CreateTask(ctx context.Context, form TaskForm) error {
	payload, err := form.CreatePayload()
	if err != nil {
		return c.rejected(err)
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	if _, err := c.deps.Tasks.CreateTask(ctx, payload); err != nil {
		return c.mutationFailed(err, "Failed to create task")
	}
	c.view.ClearTaskForm()
	return c.LoadTasks(ctx)
}

// MarkTaskComplete is safe to repeat; completing a completed task is a
// no-op on the server.
func (c *SessionClient) MarkTaskComplete(ctx context.Context, id int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.deps.Tasks.CompleteTask(ctx, id); err != nil {
		return c.mutationFailed(err, "Failed to complete task")
	}
	return c.LoadTasks(ctx)
}

// DeleteTask asks for confirmation first; nothing is sent if the user
// declines.
func (c *SessionClient) DeleteTask(ctx context.Context, id int64) {
	c.view.Confirm("Delete task", "Are you sure you want to delete this task?", func(confirmed bool) {
		if !confirmed {
			c.log.Debugf("Delete of task %d cancelled", id)
			return
		}
		_ = c.deleteTask(ctx, id)
	})
}

func (c *SessionClient) deleteTask(ctx context.Context, id int64) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.deps.Tasks.DeleteTask(ctx, id); err != nil {
		return c.mutationFailed(err, "Failed to delete task")
	}
	return c.LoadTasks(ctx)
}

func (c *SessionClient) OpenEditModal(task types.Task) {
	c.mu.Lock()
	c.editing = task.ID
	c.editOpen = true
	c.mu.Unlock()
	c.view.OpenEditor(EditForm(task))
}

func (c *SessionClient) CloseEditModal() {
	c.mu.Lock()
	c.editOpen = false
	c.mu.Unlock()
	c.view.CloseEditor()
}

// SaveTask sends the whole edit form, status included. On failure the
// editor stays open for correction.
func (c *SessionClient) SaveTask(ctx context.Context, form TaskForm) error {
	c.mu.Lock()
	id, open := c.editing, c.editOpen
	c.mu.Unlock()
	if !open {
		return ErrNoTaskSelected
	}

	payload, err := form.EditPayload()
	if err != nil {
		return c.rejected(err)
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.deps.Tasks.UpdateTask(ctx, id, payload); err != nil {
		return c.mutationFailed(err, "Failed to update task")
	}
	c.CloseEditModal()
	return c.LoadTasks(ctx)
}

func (c *SessionClient) requireSession() error {
	if c.deps.Session.Authenticated() {
		return nil
	}
	c.view.ShowError(MsgLoginRequired)
	return ErrNotAuthenticated
}

func (c *SessionClient) rejected(err error) error {
	c.view.ShowError(userMessage(err, err.Error()))
	return err
}

func (c *SessionClient) mutationFailed(err error, fallback string) error {
	if errors.Is(err, services.ErrUnauthorized) {
		c.expireSession()
		return err
	}
	c.log.Warnf("%s: %v", fallback, err)
	c.view.ShowError(userMessage(err, fallback))
	return err
}

func (c *SessionClient) setState(s ViewState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// userMessage picks the text shown to the user for err.
func userMessage(err error, fallback string) string {
	var validation *ValidationError
	var apiErr *services.APIError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, services.ErrNetwork):
		return MsgNetwork
	case errors.Is(err, ErrNotAuthenticated):
		return MsgLoginRequired
	}
	return fallback
}
