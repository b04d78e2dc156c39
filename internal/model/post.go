// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// Category は記事カテゴリを表す。4つの固定値のみ有効。
type Category string

const (
	// CategoryAI はAI・機械学習カテゴリ。
	CategoryAI Category = "ai"
	// CategoryCloud はクラウドカテゴリ。
	CategoryCloud Category = "cloud"
	// CategoryInfra はインフラカテゴリ。
	CategoryInfra Category = "infra"
	// CategoryDatabase はデータベースカテゴリ。
	CategoryDatabase Category = "database"
)

// Categories は全カテゴリをコンテンツ探索時の走査順で保持する。
var Categories = []Category{CategoryAI, CategoryCloud, CategoryInfra, CategoryDatabase}

// IsValid はカテゴリが固定4値のいずれかであるかを返す。
func (c Category) IsValid() bool {
	switch c {
	case CategoryAI, CategoryCloud, CategoryInfra, CategoryDatabase:
		return true
	}
	return false
}

// PostFrontmatter はコンテンツファイル先頭のYAMLメタデータブロックを表す。
// title、description、date、categoryは必須。tagsは省略時に空スライスとなる。
type PostFrontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Category    Category `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	Published   bool     `yaml:"published"`
	Featured    bool     `yaml:"featured"`
}

// Post はフロントマターと派生フィールドを結合した記事レコードを表す。
// コーパス構築時に1ファイルにつき1件生成され、以降は不変として扱う。
type Post struct {
	PostFrontmatter

	// Slug はファイルのベース名から導出される。コーパス全体で一意。
	Slug string
	// Content はフロントマターを除いた本文（markdown/MDX）。
	Content string
	// ReadingTime は "<n> min read" 形式の読了時間。
	ReadingTime string
	// WordCount は本文の空白区切りトークン数。
	WordCount int
	// PublishedAt はDateをパースした時刻。ソート順の基準となる。
	PublishedAt time.Time
}

// HasTag はタグの大文字小文字を無視した完全一致判定を行う。
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// TocItem は本文の見出しから抽出した目次エントリを表す。
type TocItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}
