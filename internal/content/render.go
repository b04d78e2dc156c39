package content

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/ashokvarma/ashokworld/internal/model"
)

// Renderer はmarkdown本文をサニタイズ済みHTMLと目次に変換する。
// 生成されたHTMLはそのままレスポンスに埋め込める。
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer はGFM拡張と見出しID自動付与を有効にしたRendererを生成する。
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Strikethrough,
			extension.Table,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	// UGCポリシーをベースに、目次アンカー用のid属性と
	// コードハイライト用のclass属性を許可する
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").OnElements("pre", "code")
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")

	return &Renderer{md: md, policy: policy}
}

// Render は本文をHTMLへ変換し、h2・h3見出しから目次を抽出して返す。
func (r *Renderer) Render(body string) (string, []model.TocItem, error) {
	source := []byte(body)

	ctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(source), parser.WithContext(ctx))

	toc := extractToc(doc, source)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", nil, fmt.Errorf("markdownのレンダリングに失敗しました: %w", err)
	}

	return r.policy.Sanitize(buf.String()), toc, nil
}

// extractToc はASTを走査し、h2・h3見出しを目次エントリとして収集する。
// 見出しIDはparser.WithAutoHeadingIDが付与したものを使う。
func extractToc(doc ast.Node, source []byte) []model.TocItem {
	var toc []model.TocItem

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level != 2 && heading.Level != 3 {
			return ast.WalkContinue, nil
		}

		id := ""
		if v, ok := heading.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}

		toc = append(toc, model.TocItem{
			ID:    id,
			Title: string(heading.Text(source)),
			Level: heading.Level,
		})
		return ast.WalkSkipChildren, nil
	})

	return toc
}
