// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package site builds the shader playground website.

# Directory Structure

Site has the following directories:

	build      This is where the generated site will be placed by default.
	pages      Hand-written pages, including the playground itself. HTML and
	           Markdown formats can be used.
	static     Files in this directory will be copied verbatim to the
	           generated site. CSS, JavaScript and JSON are minified.
	templates  These are the templates that wrap pages. Templates are
	           chosen on a page-by-page basis in the front matter.
	           They must have the '.html' extension.

# Generated Pages

In addition to hand-written pages, every build produces:

	/examples/<name>  A page for each example shader, using the "example"
	                  template.
	/reference        GLSL built-in reference, using the "layout" template.
	/examples.json    The example catalog.
	/feed.xml         Atom feed of examples.

# Page Layout

Each page must be of the supported format (HTML or Markdown) and have JSON front
matter in the beginning:

	{
	  "title": "Hello, world!",
	  "template": "layout",
	  "permalink": "/hello-world"
	}

See Page for all available front matter fields.

# Playground Page

The page with permalink "/" is the playground. It must contain a canvas with
id "preview", where shaders are rendered, and an element with id "editor",
where the editor is mounted. The build fails otherwise.
*/
package site

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	ttemplate "text/template"
	"time"

	"go.astrophena.name/shaderplay/internal/env"
	"go.astrophena.name/shaderplay/internal/examples"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	mjson "github.com/tdewolff/minify/v2/json"
	"rsc.io/markdown"
)

// Possible errors, used in tests.
var (
	errFrontmatterSplit        = errors.New("failed to split frontmatter and contents")
	errFrontmatterParse        = errors.New("failed to parse frontmatter")
	errFrontmatterMissing      = errors.New("missing frontmatter")
	errFrontmatterMissingParam = errors.New("missing required frontmatter parameter (title, template, permalink)")
	errFormatUnsupported       = errors.New("format unsupported")
	errPermalinkInvalid        = errors.New("invalid permalink")
	errPermalinkTaken          = errors.New("permalink is used by a generated page")
	errPlaygroundMissing       = errors.New("playground page (permalink \"/\") is missing")
	errPlaygroundContract      = errors.New("playground page doesn't satisfy the page contract")
)

// Element ids the playground page must contain.
const (
	CanvasID = "preview"
	EditorID = "editor"
)

// Config represents a build configuration.
type Config struct {
	// Title is the title of the site.
	Title string
	// Author is the name of the author of the site.
	Author string
	// BaseURL is the base URL of the site.
	BaseURL *url.URL
	// Src is the directory where to read files from. If empty, uses the current
	// directory.
	Src string
	// Dst is the directory where to write files. If empty, uses the build
	// directory.
	Dst string
	// Env is the environment to build for. Drafts are excluded in production,
	// and outside of development the base URL is used to derive absolute URLs
	// from relative ones. If empty, env.Dev is used.
	Env env.Env
	// SkipFeed determines if the feed of examples shouldn't be built.
	SkipFeed bool
	// Examples overrides the example catalog. If nil, the built-in catalog is
	// used.
	Examples []examples.Entry

	feedCreated time.Time // used in tests
}

func (c *Config) setDefaults() {
	if c.Title == "" {
		c.Title = "Shaderplay"
	}

	if c.Author == "" {
		c.Author = "Ilya Mateyko"
	}

	if c.BaseURL == nil {
		c.BaseURL = &url.URL{
			Scheme: "https",
			Host:   "shaderplay.astrophena.name",
		}
	}

	if c.Env == "" {
		c.Env = env.Dev
	}

	if c.Src == "" {
		c.Src = filepath.Join(".")
	}

	if c.Dst == "" {
		c.Dst = filepath.Join(".", "build")
	}
}

// Build builds a site based on the provided [Config].
func Build(c *Config) error {
	c.setDefaults()
	b := newBuildContext(c)

	if b.examples == nil {
		var err error
		if b.examples, err = examples.Catalog(); err != nil {
			return err
		}
	}

	// Parse templates and pages.
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "templates"), b.parseTemplates); err != nil {
		return err
	}
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "pages"), b.parsePages); err != nil {
		return err
	}
	if err := b.generatePages(); err != nil {
		return err
	}
	// Hash static files.
	if err := filepath.WalkDir(filepath.Join(b.c.Src, "static"), b.hashStatic); err != nil {
		return err
	}

	// Clean up after previous build.
	if _, err := os.Stat(b.c.Dst); err == nil {
		if err := os.RemoveAll(b.c.Dst); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(b.c.Dst, 0o755); err != nil {
		return err
	}

	for _, p := range b.pages {
		if err := b.writePage(p); err != nil {
			return err
		}
	}
	if err := b.checkPlayground(); err != nil {
		return err
	}
	if err := b.writeCatalog(); err != nil {
		return err
	}
	if !b.c.SkipFeed {
		if err := b.buildFeed(); err != nil {
			return err
		}
	}

	// Write robots.txt.
	if err := os.WriteFile(filepath.Join(b.c.Dst, "robots.txt"), []byte(robotsTxt), 0o644); err != nil {
		return err
	}
	// Copy static files.
	return filepath.WalkDir(filepath.Join(b.c.Src, "static"), b.copyStatic)
}

const robotsTxt = `User-agent: *
`

type min struct {
	m *minify.M
}

func newMin() *min {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags:    true,
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
	})
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("application/json", mjson.Minify)

	return &min{m: m}
}

func (m *min) Bytes(mediaType string, b []byte) ([]byte, error) {
	return m.m.Bytes(mediaType, b)
}

type buildContext struct {
	c         *Config
	md        *markdown.Parser
	funcs     template.FuncMap
	pages     []*Page
	templates map[string]*template.Template
	static    map[string]string // path -> hashed path (e.g. /css/main.css -> /css/main-[hash].css)
	min       *min
	examples  []examples.Entry
}

func newBuildContext(c *Config) *buildContext {
	b := &buildContext{
		c: c,
		md: &markdown.Parser{
			HeadingID:          true,
			Strikethrough:      true,
			AutoLinkText:       true,
			AutoLinkAssumeHTTP: true,
			Table:              true,
			SmartDot:           true,
			SmartDash:          true,
			SmartQuote:         true,
		},
		templates: make(map[string]*template.Template),
		static:    make(map[string]string),
		min:       newMin(),
		examples:  c.Examples,
	}

	b.funcs = template.FuncMap{
		"content":  func(p *Page) template.HTML { return template.HTML(p.contents) },
		"example":  func(p *Page) *examples.Entry { return p.example },
		"examples": func() []examples.Entry { return b.examples },
		"navLink":  b.navLink,
		"url":      b.url,
		"static":   b.getStatic,
		"env":      func() string { return string(b.c.Env) },
	}

	return b
}

func (b *buildContext) navLink(p *Page, title, path string) template.HTML {
	var add string
	if p.Permalink == path {
		add = ` class="current"`
	}
	return template.HTML(fmt.Sprintf(`<a href="%s"%s>%s</a>`, b.url(path), add, template.HTMLEscapeString(title)))
}

func isFullURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func (b *buildContext) url(base string) string {
	if isFullURL(base) || b.c.Env == env.Dev || b.c.BaseURL == nil {
		return base
	}
	ref, err := url.Parse(base)
	if err != nil {
		return base
	}
	u := *b.c.BaseURL
	u.Path = path.Join(u.Path, ref.Path)
	u.RawQuery = ref.RawQuery
	u.Fragment = ref.Fragment
	return u.String()
}

func (b *buildContext) getStatic(base string) string {
	hashed, ok := b.static[base]
	if !ok {
		return b.url(base)
	}
	return b.url(hashed)
}

func (b *buildContext) parseTemplates(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() {
		return nil
	}

	if filepath.Ext(path) != ".html" {
		return nil
	}

	name, err := filepath.Rel(filepath.Join(b.c.Src, "templates"), path)
	if err != nil {
		return err
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	// Ensure that we have slash-separated path everywhere.
	name = filepath.ToSlash(name)

	bb, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b.templates[name], err = template.New(name).Funcs(b.funcs).Parse(string(bb))
	return err
}

func (b *buildContext) parsePages(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p := &Page{path: path}
	if err := p.parse(f); err != nil {
		return err
	}
	if !p.Draft || b.c.Env != env.Prod {
		b.pages = append(b.pages, p)
	}

	return nil
}

func (b *buildContext) writePage(p *Page) error {
	dst := filepath.Join(b.c.Dst, p.dstPath)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tpl, ok := b.templates[p.Template]
	if !ok {
		return fmt.Errorf("%s: no such template %q", p.path, p.Template)
	}

	var buf bytes.Buffer
	if err := p.build(b, tpl, &buf); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

var skipHashing = []string{
	"robots.txt",
	// Loaded by the page under a fixed name.
	"wasm_exec.js",
}

func (b *buildContext) hashStatic(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	for _, skip := range skipHashing {
		if strings.Contains(path, skip) {
			return nil
		}
	}

	rel, err := filepath.Rel(filepath.Join(b.c.Src, "static"), path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hash := sha256.Sum256(buf)
	b.static["/"+rel] = "/" + formatStaticName(rel, hex.EncodeToString(hash[:]))

	return nil
}

// formatStaticName returns a hash name that inserts hash before the filename's
// extension. If no extension exists on filename then the hash is appended.
// Returns the original filename if hash is blank, and a blank string if the
// filename is blank.
func formatStaticName(filename, hash string) string {
	if filename == "" {
		return ""
	} else if hash == "" {
		return filename
	}

	dir, base := path.Split(filename)
	if i := strings.Index(base, "."); i != -1 {
		return path.Join(dir, fmt.Sprintf("%s-%s%s", base[:i], hash, base[i:]))
	}
	return path.Join(dir, fmt.Sprintf("%s-%s", base, hash))
}

func (b *buildContext) copyStatic(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	if d.IsDir() || isIgnorable(path) {
		return nil
	}

	rel, err := filepath.Rel(filepath.Join(b.c.Src, "static"), path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	hashed, ok := b.static["/"+rel]
	if !ok {
		hashed = "/" + rel
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if mediaType := mediaTypes[filepath.Ext(path)]; mediaType != "" {
		minified, err := b.min.Bytes(mediaType, buf)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		buf = minified
	}

	dst := filepath.Join(b.c.Dst, filepath.FromSlash(hashed))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf, 0o644)
}

// mediaTypes maps extensions of static files that are minified to their
// media types.
var mediaTypes = map[string]string{
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
}

func isIgnorable(path string) bool {
	// Ignore files that look like Vim backups.
	if strings.HasSuffix(path, "~") {
		return true
	}

	// Ignore .gitignore files.
	if strings.Contains(path, ".gitignore") {
		return true
	}

	return false
}

// Page represents a site page. The exported fields is the front matter fields.
type Page struct {
	Title       string            `json:"title"`                  // title: Page title, required.
	Permalink   string            `json:"permalink"`              // permalink: Output path for the page, required.
	Template    string            `json:"template"`               // template: Template that should be used for rendering this page, required.
	ContentOnly bool              `json:"content_only,omitempty"` // content_only: Determines whether this page should be rendered without header and footer, false by default.
	Draft       bool              `json:"draft,omitempty"`        // draft: Determines whether this page should be not included in production builds, false by default.
	MetaTags    map[string]string `json:"meta_tags,omitempty"`    // meta_tags: Determines additional HTML meta tags that will be added to this page, optional.
	Summary     string            `json:"summary,omitempty"`      // summary: Page summary, used as a meta description, optional.
	CSS         []string          `json:"css,omitempty"`          // css: Additional CSS files that should be loaded, optional.
	JS          []string          `json:"js,omitempty"`           // js: Additional JavaScript files that should be loaded, optional.

	path      string          // path to the page source
	dstPath   string          // where to write the built page
	contents  []byte          // page contents without front matter
	generated bool            // contents are ready HTML, not a template
	example   *examples.Entry // set on example pages
}

func (p *Page) parse(r io.Reader) error {
	// Check that format of the page is supported.
	if !slices.Contains([]string{".html", ".md"}, filepath.Ext(p.path)) {
		return fmt.Errorf("%s: %w", p.path, errFormatUnsupported)
	}

	const (
		leftDelim  = "{\n"
		rightDelim = "}\n"
	)

	// Split the front matter and contents.
	scanner := bufio.NewScanner(r)
	var (
		frontmatter, contents []byte
		reachedFrontmatter    bool
		reachedContents       bool
	)
	for scanner.Scan() {
		line := scanner.Text() + "\n"

		if !reachedContents {
			if line == leftDelim {
				reachedFrontmatter = true
			}

			if line == rightDelim {
				reachedFrontmatter = false
				frontmatter = append(frontmatter, line...)
				reachedContents = true
				continue
			}
		}

		if reachedFrontmatter {
			frontmatter = append(frontmatter, line...)
			continue
		}

		if reachedContents {
			contents = append(contents, line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errFrontmatterSplit, err)
	}
	if len(frontmatter) == 0 {
		return fmt.Errorf("%s: %w", p.path, errFrontmatterMissing)
	}
	p.contents = contents

	// Parse the front matter.
	if err := json.Unmarshal(frontmatter, p); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errFrontmatterParse, err)
	}

	// Check front matter fields.
	if p.Title == "" || p.Template == "" || p.Permalink == "" {
		return fmt.Errorf("%s: %w", p.path, errFrontmatterMissingParam)
	}
	return p.setPermalink(p.Permalink)
}

func (p *Page) setPermalink(permalink string) error {
	if _, err := url.ParseRequestURI(permalink); err != nil {
		return fmt.Errorf("%s: %w: %v", p.path, errPermalinkInvalid, err)
	}
	p.Permalink = permalink
	p.dstPath = permalink
	if !strings.HasSuffix(p.dstPath, ".html") {
		if p.dstPath == "/" {
			p.dstPath = p.dstPath + "index"
		}
		p.dstPath = p.dstPath + ".html"
	}
	p.dstPath = path.Clean(p.dstPath)
	return nil
}

var htmlCommentRe = regexp.MustCompile("<!--(.*?)-->")

func (p *Page) build(b *buildContext, tpl *template.Template, w io.Writer) error {
	if !p.generated {
		// We use here text/template, but not html/template because we don't
		// want to escape any HTML on the Markdown source.
		ptpl, err := ttemplate.New(p.path).Funcs(ttemplate.FuncMap(b.funcs)).Parse(string(p.contents))
		if err != nil {
			return err
		}
		var pbuf bytes.Buffer
		if err = ptpl.Execute(&pbuf, p); err != nil {
			return fmt.Errorf("%s: failed to execute page template: %w", p.path, err)
		}
		p.contents = pbuf.Bytes()

		if filepath.Ext(p.path) == ".md" {
			p.contents = []byte(b.markdown(string(p.contents)))
		}

		p.contents = htmlCommentRe.ReplaceAll(p.contents, []byte{})
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("%s: failed to execute template %q: %w", p.path, p.Template, err)
	}

	minified, err := b.min.Bytes("text/html", buf.Bytes())
	if err != nil {
		return err
	}

	_, err = w.Write(minified)
	return err
}

func (b *buildContext) markdown(src string) string {
	return markdown.ToHTML(b.md.Parse(src))
}
