package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizer はユーザー入力テキストのサニタイズ機能のインターフェース。
// タスクのタイトル・説明の保存前に使用される。
type InputSanitizer interface {
	// Sanitize は入力テキストからHTMLタグをすべて除去し、
	// 前後の空白をトリムして返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// inputSanitizer はInputSanitizerの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerの新しいインスタンスを生成する。
// タスクのテキストフィールドにHTMLは不要のため、
// すべてのタグを除去するStrictPolicyを使用する。
func NewInputSanitizer() InputSanitizer {
	return &inputSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize は入力テキストからHTMLタグをすべて除去して返す。
func (s *inputSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
