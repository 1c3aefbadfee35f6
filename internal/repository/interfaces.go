// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/taskman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// パスワードのハッシュ化・照合は行わず、永続化のみを担当する。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はDUPLICATE_EMAILのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// Update は既存ユーザーのレコードを更新する。
	Update(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// 各操作は単一レコードの読み書きであり、ストアのレコード単位の
// 原子性に依存する。マルチレコードトランザクションは不要。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByOwner は指定ユーザーがオーナーのタスク一覧を作成日時の昇順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Task, error)

	// ListSharedWith は指定メールアドレスに共有されたタスク一覧を
	// オーナーの表示用属性（名前・メールアドレス）付きで作成日時の昇順で返す。
	// excludeOwnerIDがオーナーのタスクは除外する（自分のタスクが自分への
	// 共有として二重に現れないようにするため）。
	ListSharedWith(ctx context.Context, email, excludeOwnerID string) ([]model.TaskWithOwner, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクのフィールドとSharedWithを上書き更新する。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。
	Delete(ctx context.Context, id string) error
}
