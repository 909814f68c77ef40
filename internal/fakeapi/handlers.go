package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/todo-manager/v2/internal/types"
)

var priorityRank = map[string]int{"High": 1, "Medium": 2, "Low": 3}

func (s *Server) listCategories(c echo.Context) error {
	uid := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []types.Category{}
	for _, cat := range s.categories {
		if cat.owner == uid {
			out = append(out, cat.Category)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c echo.Context) error {
	var body types.NewCategory
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Name == "" {
		return badRequest(c, "Category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categoryByNameLocked(userID(c), body.Name); ok {
		return badRequest(c, "Category already exists")
	}
	cat := s.addCategoryLocked(userID(c), body.Name, body.Description)
	return c.JSON(http.StatusCreated, cat)
}

func (s *Server) listTasks(c echo.Context) error {
	uid := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []types.Task{}
	for _, t := range s.tasks {
		if t.owner == uid {
			out = append(out, s.viewLocked(t))
		}
	}
	sortTasks(out)
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createTask(c echo.Context) error {
	fields, err := decodeFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}
	title, _ := fields["title"].(string)
	if title == "" {
		return badRequest(c, "Task title is required")
	}
	categoryName, _ := fields["category_name"].(string)
	categoryID, hasCategoryID := intField(fields, "category_id")
	if categoryName == "" && !hasCategoryID {
		return badRequest(c, "Category is required")
	}

	task := types.Task{Title: title, Status: types.StatusPending}
	task.Description, _ = fields["description"].(string)
	if msg := applyOptional(&task, fields); msg != "" {
		return badRequest(c, msg)
	}

	uid := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	if categoryName != "" {
		cat, ok := s.categoryByNameLocked(uid, categoryName)
		if !ok {
			cat = s.addCategoryLocked(uid, categoryName, "Auto-created")
		}
		task.CategoryID = &cat.ID
	} else {
		if _, ok := s.categoryByIDLocked(uid, categoryID); !ok {
			return notFound(c, fmt.Sprintf("Category with id %d not found", categoryID))
		}
		task.CategoryID = &categoryID
	}

	s.nextID++
	task.ID = s.nextID
	s.tasks[task.ID] = &storedTask{Task: task, owner: uid}
	return c.JSON(http.StatusCreated, types.MessageResponse{Message: "Task created", ID: task.ID})
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c, "Task not found")
	}
	fields, err := decodeFields(c)
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	uid := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[id]
	if !ok || stored.owner != uid {
		return notFound(c, fmt.Sprintf("Task with id %d not found", id))
	}
	updated := stored.Task

	if v, ok := fields["title"]; ok {
		title, _ := v.(string)
		if title == "" {
			return badRequest(c, "Task title cannot be empty")
		}
		updated.Title = title
	}
	if v, ok := fields["description"]; ok {
		updated.Description, _ = v.(string)
	}
	if msg := applyOptional(&updated, fields); msg != "" {
		return badRequest(c, msg)
	}
	if v, ok := fields["category_name"]; ok {
		name, _ := v.(string)
		if cat, found := s.categoryByNameLocked(uid, name); found {
			updated.CategoryID = &cat.ID
		}
	}

	stored.Task = updated
	return c.JSON(http.StatusOK, types.MessageResponse{Message: "Task updated", ID: id})
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return notFound(c, "Task not found")
	}
	uid := userID(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[id]
	if !ok || stored.owner != uid {
		return notFound(c, fmt.Sprintf("Task with id %d not found", id))
	}
	delete(s.tasks, id)
	return c.JSON(http.StatusOK, types.MessageResponse{Message: "Task deleted"})
}

// applyOptional copies status, priority, estimated_hours and due_date when
// present in fields; a null clears the value. It returns a validation
// message on bad input.
func applyOptional(task *types.Task, fields map[string]any) string {
	if v, ok := fields["status"]; ok {
		status, _ := v.(string)
		if !types.TaskStatus(status).Valid() {
			return "Status must be one of: Pending, In Progress, Completed"
		}
		task.Status = types.TaskStatus(status)
	}
	if v, ok := fields["priority"]; ok {
		switch p := v.(type) {
		case nil:
			task.Priority = nil
		case string:
			if _, valid := priorityRank[p]; !valid {
				return "Priority must be one of: " + strings.Join(types.Priorities, ", ")
			}
			task.Priority = &p
		default:
			return "Priority must be one of: " + strings.Join(types.Priorities, ", ")
		}
	}
	if v, ok := fields["estimated_hours"]; ok {
		switch h := v.(type) {
		case nil:
			task.EstimatedHours = nil
		case float64:
			if h < 0 {
				return "Estimated hours must be non-negative"
			}
			task.EstimatedHours = &h
		default:
			return "Estimated hours must be a number"
		}
	}
	if v, ok := fields["due_date"]; ok {
		switch d := v.(type) {
		case nil:
			task.DueDate = nil
		case string:
			if d == "" {
				task.DueDate = nil
			} else {
				task.DueDate = &d
			}
		}
	}
	return ""
}

// sortTasks orders by due date (earliest first, none last), then priority
// (High, Medium, Low, none), then estimated hours (largest first, none
// last), then id.
func sortTasks(tasks []types.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		if a.DueDate != nil && *a.DueDate != *b.DueDate {
			return *a.DueDate < *b.DueDate
		}
		if ra, rb := rank(a.Priority), rank(b.Priority); ra != rb {
			return ra < rb
		}
		if (a.EstimatedHours == nil) != (b.EstimatedHours == nil) {
			return a.EstimatedHours != nil
		}
		if a.EstimatedHours != nil && *a.EstimatedHours != *b.EstimatedHours {
			return *a.EstimatedHours > *b.EstimatedHours
		}
		return a.ID < b.ID
	})
}

func rank(p *string) int {
	if p == nil {
		return 4
	}
	if r, ok := priorityRank[*p]; ok {
		return r
	}
	return 4
}

func (s *Server) viewLocked(t *storedTask) types.Task {
	out := t.Task
	if out.CategoryID != nil {
		if cat, ok := s.categoryByIDLocked(t.owner, *out.CategoryID); ok {
			name := cat.Name
			out.Category = &name
		}
	}
	return out
}

func (s *Server) addCategoryLocked(owner int64, name, description string) types.Category {
	s.nextID++
	cat := types.Category{ID: s.nextID, Name: name, Description: description}
	s.categories = append(s.categories, storedCategory{Category: cat, owner: owner})
	return cat
}

func (s *Server) categoryByNameLocked(owner int64, name string) (types.Category, bool) {
	for _, cat := range s.categories {
		if cat.owner == owner && cat.Name == name {
			return cat.Category, true
		}
	}
	return types.Category{}, false
}

func (s *Server) categoryByIDLocked(owner, id int64) (types.Category, bool) {
	for _, cat := range s.categories {
		if cat.owner == owner && cat.ID == id {
			return cat.Category, true
		}
	}
	return types.Category{}, false
}

// decodeFields keeps key presence, which Bind into a struct would lose:
// the backend treats an absent field and a null field differently.
func decodeFields(c echo.Context) (map[string]any, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if len(raw) == 0 {
		return fields, nil
	}
	if err := sonic.ConfigStd.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func intField(fields map[string]any, key string) (int64, bool) {
	v, ok := fields[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}
