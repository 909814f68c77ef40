package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/todo-manager/v2/internal/types"
)

// TaskForm holds the raw text of the create and edit task forms.
type TaskForm struct {
	Title          string
	Description    string
	CategoryName   string
	DueDate        string
	EstimatedHours string
	Priority       string
	Status         string
}

// EditForm fills the edit form from a task; absent optional fields become
// empty strings.
func EditForm(task types.Task) TaskForm {
	form := TaskForm{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
	}
	if task.Category != nil {
		form.CategoryName = *task.Category
	}
	if task.DueDate != nil {
		form.DueDate = *task.DueDate
	}
	if task.EstimatedHours != nil {
		form.EstimatedHours = strconv.FormatFloat(*task.EstimatedHours, 'f', -1, 64)
	}
	if task.Priority != nil {
		form.Priority = *task.Priority
	}
	return form
}

// CreatePayload validates the form for POST /tasks. Status is never sent
// on create.
func (f TaskForm) CreatePayload() (types.TaskPayload, error) {
	return f.payload()
}

// EditPayload validates the form for a full PUT /tasks/{id}. A blank
// status leaves the server's value unchanged.
func (f TaskForm) EditPayload() (types.TaskPayload, error) {
	p, err := f.payload()
	if err != nil {
		return p, err
	}
	status := types.TaskStatus(strings.TrimSpace(f.Status))
	if status == "" {
		return p, nil
	}
	if !status.Valid() {
		return p, invalid("status", "Status must be one of: Pending, In Progress, Completed")
	}
	p.Status = &status
	return p, nil
}

func (f TaskForm) payload() (types.TaskPayload, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return types.TaskPayload{}, invalid("title", "Task title is required")
	}
	category := strings.TrimSpace(f.CategoryName)
	if category == "" {
		return types.TaskPayload{}, invalid("category_name", "Category is required")
	}

	p := types.TaskPayload{
		Title:        title,
		Description:  strings.TrimSpace(f.Description),
		CategoryName: category,
		DueDate:      optional(f.DueDate),
		Priority:     optional(f.Priority),
	}
	if hours := strings.TrimSpace(f.EstimatedHours); hours != "" {
		h, err := strconv.ParseFloat(hours, 64)
		if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
			return types.TaskPayload{}, invalid("estimated_hours", "Estimated hours must be a number")
		}
		if h < 0 {
			return types.TaskPayload{}, invalid("estimated_hours", "Estimated hours must be non-negative")
		}
		p.EstimatedHours = &h
	}
	return p, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
