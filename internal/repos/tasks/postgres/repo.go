package tasks

import (
	"database/sql"

	"github.com/fastprodman/gamebridge/internal/repos/tasks"
)

var _ tasks.Tasks = (*tasksRepo)(nil)

type tasksRepo struct{ db *sql.DB }

func New(db *sql.DB) *tasksRepo {
	return &tasksRepo{db: db}
}
