package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/todo-manager/v2/internal/types"
)

// TaskService handles task-related operations
type TaskService struct {
	apiClient *ApiClient
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(apiClient *ApiClient) *TaskService {
	return &TaskService{apiClient: apiClient}
}

// ListTasks fetches all tasks for the authenticated user, in the order the
// backend sorts them
func (s *TaskService) ListTasks(ctx context.Context) ([]types.Task, error) {
	var tasks []types.Task
	if err := s.apiClient.CallAPI(ctx, "/tasks", http.MethodGet, nil, &tasks, "Failed to fetch tasks"); err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	return tasks, nil
}

// CreateTask returns the id the backend assigned
func (s *TaskService) CreateTask(ctx context.Context, task types.TaskPayload) (int64, error) {
	var resp types.MessageResponse
	if err := s.apiClient.CallAPI(ctx, "/tasks", http.MethodPost, task, &resp, "Failed to create task"); err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return resp.ID, nil
}

// UpdateTask replaces the editable fields of a task
func (s *TaskService) UpdateTask(ctx context.Context, id int64, task types.TaskPayload) error {
	if err := s.apiClient.CallAPI(ctx, taskPath(id), http.MethodPut, task, nil, "Failed to update task"); err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return nil
}

// CompleteTask sends a status-only update. Completing a completed task is
// a no-op on the backend.
func (s *TaskService) CompleteTask(ctx context.Context, id int64) error {
	update := types.StatusUpdate{Status: types.StatusCompleted}
	if err := s.apiClient.CallAPI(ctx, taskPath(id), http.MethodPut, update, nil, "Failed to complete task"); err != nil {
		return fmt.Errorf("failed to complete task %d: %w", id, err)
	}
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.apiClient.CallAPI(ctx, taskPath(id), http.MethodDelete, nil, nil, "Failed to delete task"); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
