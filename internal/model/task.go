// Package model はドメインモデルを定義する。
package model

import "time"

// Priority はタスクの優先度を表す。
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid はPriorityが定義済みの値かどうかを判定する。
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Status はタスクの状態を表す。
// In Progress と Completed の2状態のみで、双方向に自由に遷移できる。
type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Valid はStatusが定義済みの値かどうかを判定する。
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Task はユーザーが作成するタスクを表す。
// OwnerIDは作成後に変更されない。SharedWithは閲覧権限を付与された
// ユーザーのメールアドレス集合（重複なし）。オーナー自身はSharedWithに
// 暗黙には含まれない。
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Priority    Priority
	Status      Status
	OwnerID     string
	SharedWith  []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSharedWith は指定メールアドレスがSharedWithに含まれるかを返す。
func (t *Task) IsSharedWith(email string) bool {
	for _, e := range t.SharedWith {
		if e == email {
			return true
		}
	}
	return false
}

// TaskWithOwner はタスクにオーナーの表示用属性（名前とメールアドレス）を
// 付加したもの。共有されたタスクの帰属表示に使用する。
type TaskWithOwner struct {
	Task
	OwnerName  string
	OwnerEmail string
}
