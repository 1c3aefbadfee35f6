package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// shared_withはtext[]カラムとして保持し、pq.Arrayで読み書きする。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	var shared pq.StringArray
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, due_date, priority, status, owner_id, shared_with, created_at, updated_at
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(&task.ID, &task.Title, &task.Description, &task.DueDate, &task.Priority, &task.Status,
		&task.OwnerID, &shared, &task.CreatedAt, &task.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	task.SharedWith = shared
	return task, nil
}

// ListByOwner は指定ユーザーがオーナーのタスク一覧を作成日時の昇順で返す。
func (r *PostgresTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, due_date, priority, status, owner_id, shared_with, created_at, updated_at
		 FROM tasks WHERE owner_id = $1
		 ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by owner: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task := &model.Task{}
		var shared pq.StringArray
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.DueDate, &task.Priority,
			&task.Status, &task.OwnerID, &shared, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		task.SharedWith = shared
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}

	return tasks, nil
}

// ListSharedWith は指定メールアドレスに共有されたタスク一覧を
// オーナーの表示用属性付きで作成日時の昇順で返す。
// excludeOwnerIDがオーナーのタスクは除外する。
func (r *PostgresTaskRepo) ListSharedWith(ctx context.Context, email, excludeOwnerID string) ([]model.TaskWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status, t.owner_id, t.shared_with,
		        t.created_at, t.updated_at, u.name, u.email
		 FROM tasks t
		 JOIN users u ON u.id = t.owner_id
		 WHERE $1 = ANY(t.shared_with) AND t.owner_id <> $2
		 ORDER BY t.created_at ASC`,
		email, excludeOwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskWithOwner
	for rows.Next() {
		var t model.TaskWithOwner
		var shared pq.StringArray
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status,
			&t.OwnerID, &shared, &t.CreatedAt, &t.UpdatedAt, &t.OwnerName, &t.OwnerEmail); err != nil {
			return nil, fmt.Errorf("failed to scan shared task row: %w", err)
		}
		t.SharedWith = shared
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shared task rows: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, due_date, priority, status, owner_id, shared_with, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Title, task.Description, task.DueDate, task.Priority, task.Status,
		task.OwnerID, pq.Array(task.SharedWith), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Update はタスクのフィールドとshared_withを上書き更新する。
// owner_idは更新対象に含めない（作成後イミュータブル）。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, due_date = $4, priority = $5, status = $6, shared_with = $7, updated_at = $8
		 WHERE id = $1`,
		task.ID, task.Title, task.Description, task.DueDate, task.Priority, task.Status,
		pq.Array(task.SharedWith), task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", task.ID)
	}
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
