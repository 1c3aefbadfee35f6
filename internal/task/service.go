// Package task はタスクの可視性計算と変更操作の認可を提供する。
//
// 可視性: ユーザーに見えるタスクは「自分がオーナーのタスク」と
// 「自分のメールアドレスに共有されたタスク」の和集合。
// 認可: 変更操作（Update / Delete / Share）はオーナーのみが実行できる。
// 共有されたユーザーは閲覧のみ可能。
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
)

// MetricsRecorder はタスクイベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordTaskCreated()
	RecordTaskShared()
}

// VisibleTask はユーザーに見えるタスクを表す。
// 共有されたタスクにはオーナーの表示用属性（名前・メールアドレス）が付く。
// 自分がオーナーのタスクでは両フィールドは空。
type VisibleTask struct {
	model.Task
	OwnerName  string
	OwnerEmail string
}

// CreateInput はタスク作成の入力。
// PriorityとStatusが空の場合は既定値（Low / In Progress）を使用する。
type CreateInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    model.Priority
	Status      model.Status
}

// UpdateInput はタスク更新の入力。nilのフィールドは変更しない。
// オーナーとSharedWithはこの操作では変更できない。
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *model.Priority
	Status      *model.Status
}

// Service はタスク管理のサービス層。
type Service struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	sanitizer security.InputSanitizer
	metrics   MetricsRecorder
}

// NewService はServiceを生成する。
// metricsはnilを許容する（記録しない）。
func NewService(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	sanitizer security.InputSanitizer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		tasks:     tasks,
		users:     users,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// ListVisible は指定ユーザーに見えるタスク一覧を返す。
// 自分がオーナーのタスクを先に、次に共有されたタスクを返す。
// 共有一覧はオーナーのタスクを除外して取得するため、同一タスクが
// 二重に現れることはない。
func (s *Service) ListVisible(ctx context.Context, userID string) ([]VisibleTask, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	owned, err := s.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned tasks: %w", err)
	}

	shared, err := s.tasks.ListSharedWith(ctx, user.Email, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared tasks: %w", err)
	}

	visible := make([]VisibleTask, 0, len(owned)+len(shared))
	for _, t := range owned {
		visible = append(visible, VisibleTask{Task: *t})
	}
	for _, t := range shared {
		visible = append(visible, VisibleTask{
			Task:       t.Task,
			OwnerName:  t.OwnerName,
			OwnerEmail: t.OwnerEmail,
		})
	}

	return visible, nil
}

// Create は新しいタスクを作成する。オーナーは呼び出しユーザーになり、
// SharedWithは空で初期化される。認証済みであること以外の認可チェックはない。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Task, error) {
	title := s.sanitizer.Sanitize(in.Title)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return nil, model.NewValidationError("期限日は必須です")
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityLow
	}
	if !priority.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正な優先度です: %s", priority))
	}

	status := in.Status
	if status == "" {
		status = model.StatusInProgress
	}
	if !status.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("不正なステータスです: %s", status))
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: s.sanitizer.Sanitize(in.Description),
		DueDate:     strings.TrimSpace(in.DueDate),
		Priority:    priority,
		Status:      status,
		OwnerID:     userID,
		SharedWith:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCreated()
	}

	return task, nil
}

// Update は指定タスクにパッチを適用して返す。
// オーナーのみが実行でき、それ以外の認証済みユーザーにはFORBIDDENを返す。
func (s *Service) Update(ctx context.Context, callerID, taskID string, in UpdateInput) (*model.Task, error) {
	task, err := s.authorizeOwner(ctx, callerID, taskID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := s.sanitizer.Sanitize(*in.Title)
		if title == "" {
			return nil, model.NewValidationError("タイトルは空にできません")
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = s.sanitizer.Sanitize(*in.Description)
	}
	if in.DueDate != nil {
		dueDate := strings.TrimSpace(*in.DueDate)
		if dueDate == "" {
			return nil, model.NewValidationError("期限日は空にできません")
		}
		task.DueDate = dueDate
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("不正な優先度です: %s", *in.Priority))
		}
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, model.NewValidationError(fmt.Sprintf("不正なステータスです: %s", *in.Status))
		}
		task.Status = *in.Status
	}

	task.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete は指定タスクを削除する。オーナーのみが実行できる。
func (s *Service) Delete(ctx context.Context, callerID, taskID string) error {
	if _, err := s.authorizeOwner(ctx, callerID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	slog.Info("task deleted",
		slog.String("task_id", taskID),
		slog.String("user_id", callerID),
	)
	return nil
}

// Share は指定タスクを登録済みユーザーのメールアドレスに共有する。
// オーナーのみが実行でき、共有先は登録済みユーザーでなければならない。
// 既に共有済みの場合はALREADY_SHAREDを返し、SharedWithは変化しない。
func (s *Service) Share(ctx context.Context, callerID, taskID, recipientEmail string) (*model.Task, error) {
	email := strings.TrimSpace(recipientEmail)
	if email == "" {
		return nil, model.NewValidationError("共有先のメールアドレスは必須です")
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	if task.OwnerID != callerID {
		return nil, model.NewForbiddenError()
	}

	recipient, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find recipient: %w", err)
	}
	if recipient == nil {
		return nil, model.NewRecipientNotFoundError(email)
	}

	if task.IsSharedWith(email) {
		return nil, model.NewAlreadySharedError(email)
	}

	task.SharedWith = append(task.SharedWith, email)
	task.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to persist share: %w", err)
	}

	slog.Info("task shared",
		slog.String("task_id", taskID),
		slog.String("owner_id", callerID),
		slog.String("recipient", email),
	)
	if s.metrics != nil {
		s.metrics.RecordTaskShared()
	}

	return task, nil
}

// authorizeOwner はタスクを取得し、呼び出しユーザーがオーナーであることを
// 確認する。Shareと同一の判定パターンをUpdate/Deleteにも適用する。
func (s *Service) authorizeOwner(ctx context.Context, callerID, taskID string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}
	if task.OwnerID != callerID {
		return nil, model.NewForbiddenError()
	}
	return task, nil
}
