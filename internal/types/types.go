package types

// TaskStatus is the backend's status vocabulary.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// Statuses lists every status the backend accepts, in display order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priorities lists the backend's priority vocabulary, highest last.
var Priorities = []string{"Low", "Medium", "High"}

// TokenResponse is the body of a successful /login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse covers acknowledgements and error bodies alike; the
// backend uses either key.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// Category is owned by the authenticated user on the server.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewCategory is the body of POST /categories.
type NewCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Task as returned by GET /tasks. Category carries the category name and
// CategoryID its id; either may be absent depending on the backend build.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         TaskStatus `json:"status"`
	EstimatedHours *float64   `json:"estimated_hours"`
	DueDate        *string    `json:"due_date"`
	Priority       *string    `json:"priority"`
	CategoryID     *int64     `json:"category_id,omitempty"`
	Category       *string    `json:"category,omitempty"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// TaskPayload is the body of POST /tasks and of a full PUT /tasks/{id}.
// Optional fields are sent as null, never omitted; Status is only sent
// by the edit path.
type TaskPayload struct {
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	CategoryName   string      `json:"category_name"`
	DueDate        *string     `json:"due_date"`
	EstimatedHours *float64    `json:"estimated_hours"`
	Priority       *string     `json:"priority"`
	Status         *TaskStatus `json:"status,omitempty"`
}

// StatusUpdate is the partial PUT /tasks/{id} used to complete a task.
type StatusUpdate struct {
	Status TaskStatus `json:"status"`
}

// Health is the body of GET /health.
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	Database    string `json:"database,omitempty"`
	Environment string `json:"environment,omitempty"`
}
