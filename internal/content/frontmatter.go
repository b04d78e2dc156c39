// Package content はコンテンツファイルの解析とコーパス管理を提供する。
package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// frontmatterDelim はフロントマターブロックの区切り行。
const frontmatterDelim = "---"

// ErrMissingDelimiter はフロントマターの開始・終了区切りが欠けている場合のエラー。
var ErrMissingDelimiter = errors.New("frontmatter delimiter not found")

// ParseError はコンテンツファイルの構文不正を表す。
// 呼び出し側は該当ファイルをスキップし、スキャン全体を中断してはならない。
type ParseError struct {
	Reason string
	Err    error
}

// Error はerrorインターフェースを実装する。
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Unwrap はラップしたエラーを返す。
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError は必須フロントマターフィールドの欠落・不正を表す。
// 回復方法はParseErrorと同じで、該当ファイルのスキップのみ。
type ValidationError struct {
	Field  string
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field %q: %s", e.Field, e.Reason)
}

// ParseFrontmatter はファイル全文を先頭のYAMLフロントマターと本文に分割し、
// フロントマターを厳密にデコードして返す。
// 区切り不正・YAML構文不正の場合はParseErrorを返す。
func ParseFrontmatter(raw string) (*model.PostFrontmatter, string, error) {
	block, body, err := splitFrontmatter(raw)
	if err != nil {
		return nil, "", &ParseError{Reason: "malformed frontmatter block", Err: err}
	}

	fm := &model.PostFrontmatter{}
	if err := yaml.Unmarshal([]byte(block), fm); err != nil {
		return nil, "", &ParseError{Reason: "invalid YAML frontmatter", Err: err}
	}

	// tags省略時は空スライスとして扱う
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return fm, body, nil
}

// splitFrontmatter は "---" 区切りのメタデータブロックと本文を分離する。
// ファイルは "---" 行で始まり、次の "---" 行でブロックが終わる必要がある。
func splitFrontmatter(raw string) (block, body string, err error) {
	// 先頭のBOM・空白は許容しない。開始区切りはファイル先頭に置く。
	rest, ok := strings.CutPrefix(raw, frontmatterDelim+"\n")
	if !ok {
		if rest, ok = strings.CutPrefix(raw, frontmatterDelim+"\r\n"); !ok {
			return "", "", fmt.Errorf("%w: missing opening delimiter", ErrMissingDelimiter)
		}
	}

	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return "", "", fmt.Errorf("%w: missing closing delimiter", ErrMissingDelimiter)
	}

	block = rest[:idx]
	tail := rest[idx+1+len(frontmatterDelim):]
	// 終了区切り行の残り（改行まで）を読み飛ばす
	if nl := strings.Index(tail, "\n"); nl >= 0 {
		tail = tail[nl+1:]
	} else {
		tail = ""
	}

	return block, tail, nil
}

// dateFormats はfrontmatterのdateフィールドとして受理する形式。
var dateFormats = []string{time.RFC3339, "2006-01-02"}

// ValidateFrontmatter は必須フィールドの存在とdate・categoryの妥当性を検査し、
// パース済みの公開日時を返す。不正の場合はValidationErrorを返す。
func ValidateFrontmatter(fm *model.PostFrontmatter) (time.Time, error) {
	if strings.TrimSpace(fm.Title) == "" {
		return time.Time{}, &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(fm.Description) == "" {
		return time.Time{}, &ValidationError{Field: "description", Reason: "required"}
	}
	if strings.TrimSpace(fm.Date) == "" {
		return time.Time{}, &ValidationError{Field: "date", Reason: "required"}
	}
	if !fm.Category.IsValid() {
		return time.Time{}, &ValidationError{
			Field:  "category",
			Reason: fmt.Sprintf("must be one of ai, cloud, infra, database (got %q)", fm.Category),
		}
	}

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, fm.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:  "date",
		Reason: fmt.Sprintf("not an ISO-8601 date: %q", fm.Date),
	}
}
