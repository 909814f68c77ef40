package core

import (
	"fmt"
	"strconv"

	"github.com/todo-manager/v2/internal/types"
)

const (
	NoCategoriesPlaceholder = "No categories yet. Create one to get started."
	NoTasksPlaceholder      = "No tasks yet."
)

type CategoryRow struct {
	ID          int64
	Name        string
	Description string
}

// TaskRow is one rendered task. CanComplete is false once the task is
// completed, so no complete action is offered for it.
type TaskRow struct {
	Task        types.Task
	Title       string
	Category    string
	Details     []string
	Status      string
	CanComplete bool
}

func CategoryRows(categories []types.Category) []CategoryRow {
	rows := make([]CategoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, CategoryRow{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return rows
}

func TaskRows(tasks []types.Task) []TaskRow {
	rows := make([]TaskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, TaskRow{
			Task:        t,
			Title:       t.Title,
			Category:    categoryLabel(t),
			Details:     taskDetails(t),
			Status:      string(t.Status),
			CanComplete: !t.Completed(),
		})
	}
	return rows
}

func categoryLabel(t types.Task) string {
	switch {
	case t.Category != nil && *t.Category != "":
		return *t.Category
	case t.CategoryID != nil:
		return fmt.Sprintf("#%d", *t.CategoryID)
	}
	return "Uncategorized"
}

func taskDetails(t types.Task) []string {
	var details []string
	if t.Description != "" {
		details = append(details, t.Description)
	}
	if t.DueDate != nil && *t.DueDate != "" {
		details = append(details, "Due: "+*t.DueDate)
	}
	if t.EstimatedHours != nil {
		details = append(details, "Estimated: "+strconv.FormatFloat(*t.EstimatedHours, 'f', -1, 64)+"h")
	}
	if t.Priority != nil && *t.Priority != "" {
		details = append(details, "Priority: "+*t.Priority)
	}
	return details
}
