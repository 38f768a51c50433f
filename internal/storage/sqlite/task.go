package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/slok/w3task/internal/model"
)

const taskColumns = `
	id, status, title, description, reward, end_date,
	authorized, creator, assignee, metadata, confirmers, revision
`

// CreateTask stores a new task, the ID is assigned by SQLite autoincrement.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	row, err := taskToRow(t)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO tasks (
			status, title, description, reward, end_date,
			authorized, creator, assignee, metadata, confirmers, revision
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`

	result, err := r.db.ExecContext(ctx, query,
		row.status,
		row.title,
		row.description,
		row.reward,
		row.endDate,
		row.authorized,
		row.creator,
		row.assignee,
		row.metadata,
		row.confirmers,
	)
	if err != nil {
		return nil, fmt.Errorf("could not insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get task id: %w", err)
	}

	created := t.Clone()
	created.ID = model.TaskID(id)
	created.EndDate = model.NormalizeEndDate(created.EndDate)
	created.Revision = 1

	r.logger.Debugf("Created task in repository: %d", created.ID)
	return &created, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.TaskNotFoundError{TaskID: id}
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &t, nil
}

// ListTasks returns the tasks ordered by ID.
func (r *Repository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, filter.Status.String())
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// UpdateTask replaces an existing task when the stored revision matches.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	row, err := taskToRow(t)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET
			status = ?,
			title = ?,
			description = ?,
			reward = ?,
			end_date = ?,
			authorized = ?,
			creator = ?,
			assignee = ?,
			metadata = ?,
			confirmers = ?,
			revision = revision + 1
		WHERE id = ? AND revision = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		row.status,
		row.title,
		row.description,
		row.reward,
		row.endDate,
		row.authorized,
		row.creator,
		row.assignee,
		row.metadata,
		row.confirmers,
		int64(t.ID),
		t.Revision,
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		// Missing or changed by someone else.
		if _, err := r.GetTask(ctx, t.ID); err != nil {
			return err
		}
		return fmt.Errorf("task %d revision %d: %w", t.ID, t.Revision, model.ErrConflict)
	}

	r.logger.Debugf("Updated task in repository: %d", t.ID)
	return nil
}

type taskRow struct {
	status      string
	title       string
	description string
	reward      string
	endDate     *int64
	authorized  string
	creator     int64
	assignee    string
	metadata    string
	confirmers  string
}

func taskToRow(t model.Task) (taskRow, error) {
	reward := "0"
	if t.Reward != nil {
		reward = t.Reward.String()
	}

	var endDate *int64
	if !t.EndDate.IsZero() {
		u := t.EndDate.Unix()
		endDate = &u
	}

	authorized := t.Authorized
	if authorized == nil {
		authorized = []model.RoleID{}
	}
	authorizedJSON, err := json.Marshal(authorized)
	if err != nil {
		return taskRow{}, fmt.Errorf("could not marshal authorized roles: %w", err)
	}

	confirmers := t.Confirmers
	if confirmers == nil {
		confirmers = []model.Address{}
	}
	confirmersJSON, err := json.Marshal(confirmers)
	if err != nil {
		return taskRow{}, fmt.Errorf("could not marshal confirmers: %w", err)
	}

	return taskRow{
		status:      t.Status.String(),
		title:       t.Title,
		description: t.Description,
		reward:      reward,
		endDate:     endDate,
		authorized:  string(authorizedJSON),
		creator:     int64(t.Creator),
		assignee:    string(t.Assignee),
		metadata:    t.Metadata,
		confirmers:  string(confirmersJSON),
	}, nil
}

func scanTask(s scanner) (model.Task, error) {
	var (
		id                     int64
		status, reward         string
		endDate                sql.NullInt64
		authorized, confirmers string
		creator                int64
		assignee               string
		t                      model.Task
	)

	err := s.Scan(
		&id,
		&status,
		&t.Title,
		&t.Description,
		&reward,
		&endDate,
		&authorized,
		&creator,
		&assignee,
		&t.Metadata,
		&confirmers,
		&t.Revision,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.ID = model.TaskID(id)
	t.Creator = model.RoleID(creator)
	t.Assignee = model.Address(assignee)

	t.Status, err = model.ParseTaskStatus(status)
	if err != nil {
		return model.Task{}, fmt.Errorf("invalid stored status: %w", err)
	}

	rw, ok := new(big.Int).SetString(reward, 10)
	if !ok {
		return model.Task{}, fmt.Errorf("invalid stored reward %q", reward)
	}
	t.Reward = rw

	if endDate.Valid {
		t.EndDate = time.Unix(endDate.Int64, 0).UTC()
	}

	if err := json.Unmarshal([]byte(authorized), &t.Authorized); err != nil {
		return model.Task{}, fmt.Errorf("invalid stored authorized roles: %w", err)
	}
	if err := json.Unmarshal([]byte(confirmers), &t.Confirmers); err != nil {
		return model.Task{}, fmt.Errorf("invalid stored confirmers: %w", err)
	}

	return t, nil
}
