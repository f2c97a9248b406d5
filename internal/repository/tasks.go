package repository

import (
	"context"
	"time"

	"github.com/DhavalFatnani/staff-roaster-dashboard-sub000/internal/domain"
)

func (r *Repository) GetAllTasks() ([]*domain.Task, error) {
	query := `
		SELECT id, name, category, created_at, version FROM tasks ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Name, &task.Category, &task.CreatedAt, &task.Version); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) GetTaskByID(id int64) (*domain.Task, error) {
	query := `
		SELECT name, category, created_at, version FROM tasks WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	task := &domain.Task{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&task.Name, &task.Category, &task.CreatedAt, &task.Version); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *Repository) CreateTask(task *domain.Task) error {
	query := `
		INSERT INTO tasks (name, category)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, task.Name, task.Category).Scan(&task.ID, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateTask(task *domain.Task) error {
	query := `
		UPDATE tasks
		SET
			name = $1,
			category = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, task.Name, task.Category, task.ID, task.Version).Scan(&task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	query := `
		DELETE FROM tasks WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
