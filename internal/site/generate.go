// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.astrophena.name/shaderplay/internal/assist"
	"go.astrophena.name/shaderplay/internal/examples"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/feeds"
)

// generatedTemplate wraps generated pages.
const generatedTemplate = "layout"

// generatePages adds example pages and the reference page to the parsed
// pages.
func (b *buildContext) generatePages() error {
	taken := make(map[string]string)
	for _, p := range b.pages {
		taken[p.Permalink] = p.path
	}
	add := func(p *Page) error {
		if src, ok := taken[p.Permalink]; ok {
			return fmt.Errorf("%s: %w: %s", src, errPermalinkTaken, p.Permalink)
		}
		taken[p.Permalink] = p.path
		b.pages = append(b.pages, p)
		return nil
	}

	for i := range b.examples {
		p, err := b.examplePage(&b.examples[i])
		if err != nil {
			return err
		}
		if err := add(p); err != nil {
			return err
		}
	}

	ref, err := b.referencePage()
	if err != nil {
		return err
	}
	return add(ref)
}

func examplePermalink(name string) string { return "/examples/" + name }

func (b *buildContext) examplePage(e *examples.Entry) (*Page, error) {
	var sb strings.Builder
	if e.Description != "" {
		sb.WriteString(e.Description)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "[Open in the playground](%s)\n\n", b.url("/?example="+e.Name))
	writeCode(&sb, "Vertex shader", e.Vertex)
	writeCode(&sb, "Fragment shader", e.Fragment)

	p := &Page{
		Title:     e.Title,
		Template:  generatedTemplate,
		Summary:   summarize(e.Description),
		path:      "examples/" + e.Name,
		contents:  []byte(b.markdown(sb.String())),
		generated: true,
		example:   e,
	}
	if err := p.setPermalink(examplePermalink(e.Name)); err != nil {
		return nil, err
	}
	return p, nil
}

func writeCode(sb *strings.Builder, heading, src string) {
	// A fence longer than any backtick run in src.
	fence := "```"
	for strings.Contains(src, fence) {
		fence += "`"
	}
	fmt.Fprintf(sb, "## %s\n\n%sglsl\n%s\n%s\n\n", heading, fence, strings.TrimRight(src, "\n"), fence)
}

// summarize returns the first paragraph of Markdown text as plain text.
func summarize(md string) string {
	para, _, _ := strings.Cut(strings.TrimSpace(md), "\n\n")
	return strings.Join(strings.Fields(para), " ")
}

func (b *buildContext) referencePage() (*Page, error) {
	names := assist.Builtins()

	var sb strings.Builder
	sb.WriteString("Built-in functions and variables of GLSL ES 1.00, as described by the editor.\n\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", name, name)
	}
	sb.WriteString("\n")
	for _, name := range names {
		h, ok := assist.HoverFor(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "## %s {#%s}\n\n%s\n\n", name, name, h.Markdown)
	}

	p := &Page{
		Title:     "Reference",
		Template:  generatedTemplate,
		Summary:   "GLSL ES built-in functions and variables.",
		path:      "reference",
		contents:  []byte(b.markdown(sb.String())),
		generated: true,
	}
	if err := p.setPermalink("/reference"); err != nil {
		return nil, err
	}
	return p, nil
}

// writeCatalog writes the example catalog as JSON.
func (b *buildContext) writeCatalog() error {
	list := b.examples
	if list == nil {
		list = []examples.Entry{}
	}
	buf, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if buf, err = b.min.Bytes("application/json", buf); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.c.Dst, "examples.json"), buf, 0o644)
}

// checkPlayground verifies that the built playground page has the elements
// the playground script mounts into.
func (b *buildContext) checkPlayground() error {
	var playground *Page
	for _, p := range b.pages {
		if p.Permalink == "/" {
			playground = p
			break
		}
	}
	if playground == nil {
		return errPlaygroundMissing
	}

	buf, err := os.ReadFile(filepath.Join(b.c.Dst, playground.dstPath))
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf))
	if err != nil {
		return err
	}

	for _, sel := range []string{"canvas#" + CanvasID, "#" + EditorID} {
		if doc.Find(sel).Length() != 1 {
			return fmt.Errorf("%s: %w: want exactly one %q", playground.path, errPlaygroundContract, sel)
		}
	}
	return nil
}

func (b *buildContext) buildFeed() error {
	feed := &feeds.Feed{
		Title:       b.c.Title + " examples",
		Link:        &feeds.Link{Href: b.c.BaseURL.String() + "/"},
		Description: "Example shaders for the playground.",
		Author:      &feeds.Author{Name: b.c.Author},
		Created:     time.Now(),
	}
	if !b.c.feedCreated.IsZero() {
		feed.Created = b.c.feedCreated
	}

	for _, p := range b.pages {
		if p.example == nil {
			continue
		}

		pu := *b.c.BaseURL
		pu.Path = path.Join(pu.Path, p.Permalink)

		feed.Items = append(feed.Items, &feeds.Item{
			Id:          pu.String(),
			Title:       p.Title,
			Link:        &feeds.Link{Href: pu.String()},
			Author:      feed.Author,
			Description: p.Summary,
			Content:     string(p.contents),
			Created:     feed.Created,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(b.c.Dst, "feed.xml"), []byte(atom), 0o644)
}
