package model

import "github.com/xxxsen/mtodo/internal/pkg/timeutil"

const (
	TodoStatusTodo       = "todo"
	TodoStatusInProgress = "in-progress"
	TodoStatusDone       = "done"

	TodoTitleMaxLen = 100
)

// Todo timestamps are unix milliseconds.
type Todo struct {
	ID        int64  `db:"id"`
	UserID    int64  `db:"user_id"`
	Title     string `db:"title"`
	Desc      string `db:"description"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func ValidTodoStatus(status string) bool {
	switch status {
	case TodoStatusTodo, TodoStatusInProgress, TodoStatusDone:
		return true
	}
	return false
}

func (t *Todo) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         t.ID,
		"title":      t.Title,
		"desc":       t.Desc,
		"status":     t.Status,
		"created_at": timeutil.FormatMilli(t.CreatedAt),
		"updated_at": timeutil.FormatMilli(t.UpdatedAt),
		"user_id":    t.UserID,
	}
}

func TodosToMaps(todos []Todo) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(todos))
	for i := range todos {
		out = append(out, todos[i].ToMap())
	}
	return out
}
