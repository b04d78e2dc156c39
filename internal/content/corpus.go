package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// Corpus はパース済み記事の不変コレクションを表す。
// Loadで一度だけ構築され、以降は無制限の並行読み取りが可能（書き込みは発生しない）。
type Corpus struct {
	posts   []*model.Post // 日付降順、同日付は発見順
	bySlug  map[string]*model.Post
	skipped int // 構文不正・検証失敗・slug重複でスキップしたファイル数
}

// Load はコンテンツルート配下の固定カテゴリディレクトリを走査し、コーパスを構築する。
// カテゴリディレクトリの欠落は記事0件として扱い、エラーにしない。
// 単一ファイルの構文不正・検証失敗はログに記録してスキップし、走査を中断しない。
// published=falseの記事はこの時点で除外され、以降いかなるクエリからも見えない。
func Load(root string, logger *slog.Logger) *Corpus {
	c := &Corpus{
		bySlug: make(map[string]*model.Post),
	}

	for _, category := range model.Categories {
		dir := filepath.Join(root, string(category))

		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("カテゴリディレクトリを読み取れません",
					slog.String("dir", dir),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		// os.ReadDirはファイル名順を保証するため、発見順は決定的になる
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := filepath.Ext(name)
			if ext != ".mdx" && ext != ".md" {
				continue
			}

			path := filepath.Join(dir, name)
			slug := strings.TrimSuffix(name, ext)

			post, err := loadFile(path, slug)
			if err != nil {
				logger.Warn("コンテンツファイルをスキップします",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				c.skipped++
				continue
			}
			if post == nil {
				// 非公開記事
				continue
			}

			// slugはコーパス全体で一意。重複は先勝ちで後続をスキップする。
			if _, exists := c.bySlug[slug]; exists {
				logger.Warn("slugが重複しています",
					slog.String("slug", slug),
					slog.String("path", path),
				)
				c.skipped++
				continue
			}

			c.bySlug[slug] = post
			c.posts = append(c.posts, post)
		}
	}

	// 日付降順の安定ソート。同日付の記事は発見順を保つ。
	sort.SliceStable(c.posts, func(i, j int) bool {
		return c.posts[i].PublishedAt.After(c.posts[j].PublishedAt)
	})

	logger.Info("コーパスを構築しました",
		slog.Int("posts", len(c.posts)),
		slog.Int("skipped", c.skipped),
	)

	return c
}

// loadFile は1ファイルをパース・検証し、Postレコードを生成する。
// 非公開記事は(nil, nil)を返す。
// カテゴリはfrontmatterの値を正とし、ディレクトリ位置はファイル発見にのみ使う。
func loadFile(path, slug string) (*model.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Reason: "cannot read file", Err: err}
	}

	fm, body, err := ParseFrontmatter(string(raw))
	if err != nil {
		return nil, err
	}

	publishedAt, err := ValidateFrontmatter(fm)
	if err != nil {
		return nil, err
	}

	if !fm.Published {
		return nil, nil
	}

	return &model.Post{
		PostFrontmatter: *fm,
		Slug:            slug,
		Content:         body,
		ReadingTime:     ReadingTime(body),
		WordCount:       CountWords(body),
		PublishedAt:     publishedAt,
	}, nil
}

// GetAllPosts は公開記事の全件を日付降順で返す。
func (c *Corpus) GetAllPosts() []*model.Post {
	out := make([]*model.Post, len(c.posts))
	copy(out, c.posts)
	return out
}

// GetPostBySlug はslug完全一致の記事を返す。見つからない場合はnilを返す。
func (c *Corpus) GetPostBySlug(slug string) *model.Post {
	return c.bySlug[slug]
}

// GetPostsByCategory は指定カテゴリの記事を日付降順で返す。
func (c *Corpus) GetPostsByCategory(category model.Category) []*model.Post {
	var out []*model.Post
	for _, p := range c.posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// GetFeaturedPosts はfeatured=trueの記事を日付降順で返す。
func (c *Corpus) GetFeaturedPosts() []*model.Post {
	var out []*model.Post
	for _, p := range c.posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// GetLatestPosts は日付降順の先頭n件を返す。
func (c *Corpus) GetLatestPosts(n int) []*model.Post {
	if n < 0 {
		n = 0
	}
	if n > len(c.posts) {
		n = len(c.posts)
	}
	out := make([]*model.Post, n)
	copy(out, c.posts[:n])
	return out
}

// GetRelatedPosts は同カテゴリからcurrentSlugを除いた先頭n件を返す。
// カテゴリ一致以外の関連度スコアリングは行わない。
func (c *Corpus) GetRelatedPosts(currentSlug string, category model.Category, n int) []*model.Post {
	var out []*model.Post
	for _, p := range c.posts {
		if p.Category != category || p.Slug == currentSlug {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

// GetAllTags は全公開記事のタグを重複排除し、昇順ソートして返す。
func (c *Corpus) GetAllTags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range c.posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// GetPostsByTag はタグの大文字小文字を無視した完全一致で記事を返す。
func (c *Corpus) GetPostsByTag(tag string) []*model.Post {
	var out []*model.Post
	for _, p := range c.posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// SearchPosts はタイトル・説明・タグに対する大文字小文字を無視した部分一致検索を行う。
func (c *Corpus) SearchPosts(query string) []*model.Post {
	q := strings.ToLower(query)
	var out []*model.Post
	for _, p := range c.posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
			continue
		}
		for _, t := range p.Tags {
			if strings.Contains(strings.ToLower(t), q) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// GetPostCountByCategory は固定4カテゴリそれぞれの公開記事数を返す。
// 記事のないカテゴリも0件として必ず含まれる。
func (c *Corpus) GetPostCountByCategory() map[model.Category]int {
	counts := make(map[model.Category]int, len(model.Categories))
	for _, cat := range model.Categories {
		counts[cat] = 0
	}
	for _, p := range c.posts {
		counts[p.Category]++
	}
	return counts
}

// Len は公開記事の総数を返す。
func (c *Corpus) Len() int {
	return len(c.posts)
}

// Skipped は構文不正・検証失敗・slug重複でスキップしたファイル数を返す。
func (c *Corpus) Skipped() int {
	return c.skipped
}
