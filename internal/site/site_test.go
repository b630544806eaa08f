// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package site

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.astrophena.name/base/testutil"
	"go.astrophena.name/base/txtar"
	"go.astrophena.name/shaderplay/internal/env"
	"go.astrophena.name/shaderplay/internal/examples"

	"github.com/PuerkitoBio/goquery"
	"github.com/fsnotify/fsnotify"
)

var testExamples = []examples.Entry{
	{
		Name:        "red",
		Title:       "Red",
		Description: "Fills the screen with red.\n\nSecond paragraph.",
		Vertex:      "void main() { gl_Position = vec4(0.0); }",
		Fragment:    "void main() { gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0); }",
	},
	{
		Name:     "blue",
		Title:    "Blue",
		Vertex:   "void main() { gl_Position = vec4(0.0); }",
		Fragment: "void main() { gl_FragColor = vec4(0.0, 0.0, 1.0, 1.0); }",
	},
}

// extract unpacks a txtar file from testdata into a temporary directory.
func extract(t *testing.T, name string) string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	testutil.ExtractTxtar(t, ar, dir)
	return dir
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func hrefs(doc *goquery.Document) []string {
	var links []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}

func TestBuild(t *testing.T) {
	src, dst := extract(t, "basic.txtar"), t.TempDir()

	if err := Build(&Config{
		Src:         src,
		Dst:         dst,
		Examples:    testExamples,
		feedCreated: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}

	t.Run("playground", func(t *testing.T) {
		doc := readDoc(t, filepath.Join(dst, "index.html"))
		testutil.AssertEqual(t, doc.Find("canvas#preview").Length(), 1)
		testutil.AssertEqual(t, doc.Find("#editor").Length(), 1)
		testutil.AssertEqual(t, doc.Find("ul.examples li").Length(), len(testExamples))
		testutil.AssertEqual(t, doc.Find("nav a.current").Text(), "Playground")
	})

	t.Run("markdown page", func(t *testing.T) {
		doc := readDoc(t, filepath.Join(dst, "about.html"))
		testutil.AssertEqual(t, doc.Find("main em").Text(), "in your browser")
	})

	t.Run("drafts included outside production", func(t *testing.T) {
		if _, err := os.Stat(filepath.Join(dst, "draft.html")); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("example pages", func(t *testing.T) {
		for _, e := range testExamples {
			doc := readDoc(t, filepath.Join(dst, "examples", e.Name+".html"))
			testutil.AssertEqual(t, doc.Find("title").Text(), e.Title)
			testutil.AssertEqual(t, doc.Find("pre code").Length(), 2)
			if !strings.Contains(doc.Find("pre code").Last().Text(), "gl_FragColor") {
				t.Errorf("%s: fragment shader is not shown", e.Name)
			}
			if !slices.Contains(hrefs(doc), "/?example="+e.Name) {
				t.Errorf("%s: no link to the playground in %v", e.Name, hrefs(doc))
			}
		}
		doc := readDoc(t, filepath.Join(dst, "examples", "red.html"))
		desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
		testutil.AssertEqual(t, desc, "Fills the screen with red.")
	})

	t.Run("reference", func(t *testing.T) {
		doc := readDoc(t, filepath.Join(dst, "reference.html"))
		testutil.AssertEqual(t, doc.Find("h2#smoothstep").Length(), 1)
		testutil.AssertEqual(t, doc.Find("h2#gl_FragColor").Length(), 1)
		if !slices.Contains(hrefs(doc), "#mix") {
			t.Error("no link to mix in the table of contents")
		}
	})

	t.Run("catalog", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dst, "examples.json"))
		if err != nil {
			t.Fatal(err)
		}
		var got []examples.Entry
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, got, testExamples)
	})

	t.Run("feed", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dst, "feed.xml"))
		if err != nil {
			t.Fatal(err)
		}
		feed := string(b)
		for _, want := range []string{
			"https://shaderplay.astrophena.name/examples/red",
			"https://shaderplay.astrophena.name/examples/blue",
			"2025-03-14T00:00:00Z",
		} {
			if !strings.Contains(feed, want) {
				t.Errorf("feed doesn't contain %q", want)
			}
		}
	})

	t.Run("static", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dst, "css", "main-*.css"))
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(matches), 1)
		b, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, string(b), "body{margin:0}")

		doc := readDoc(t, filepath.Join(dst, "index.html"))
		href, _ := doc.Find(`link[rel="stylesheet"]`).Attr("href")
		testutil.AssertEqual(t, href, "/css/"+filepath.Base(matches[0]))
	})
}

func TestBuildProduction(t *testing.T) {
	src, dst := extract(t, "basic.txtar"), t.TempDir()

	if err := Build(&Config{
		Src:      src,
		Dst:      dst,
		Env:      env.Prod,
		SkipFeed: true,
		Examples: testExamples,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dst, "draft.html")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("draft was built in production: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "feed.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("feed was built with SkipFeed: %v", err)
	}

	doc := readDoc(t, filepath.Join(dst, "examples", "red.html"))
	if !slices.Contains(hrefs(doc), "https://shaderplay.astrophena.name/?example=red") {
		t.Errorf("want absolute playground link, got %v", hrefs(doc))
	}
}

func TestBuildDefaultCatalog(t *testing.T) {
	src, dst := extract(t, "basic.txtar"), t.TempDir()
	if err := Build(&Config{Src: src, Dst: dst, SkipFeed: true}); err != nil {
		t.Fatal(err)
	}
	names, err := examples.Names()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dst, "examples", name+".html")); err != nil {
			t.Error(err)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]struct {
		modify  func(t *testing.T, src string)
		wantErr error
	}{
		"no canvas": {
			modify: func(t *testing.T, src string) {
				writeFile(t, filepath.Join(src, "pages", "index.html"), `{
  "title": "Playground",
  "template": "layout",
  "permalink": "/"
}
<div id="editor"></div>
`)
			},
			wantErr: errPlaygroundContract,
		},
		"two editors": {
			modify: func(t *testing.T, src string) {
				writeFile(t, filepath.Join(src, "pages", "index.html"), `{
  "title": "Playground",
  "template": "layout",
  "permalink": "/"
}
<div id="editor"></div>
<div id="editor"></div>
<canvas id="preview"></canvas>
`)
			},
			wantErr: errPlaygroundContract,
		},
		"no playground": {
			modify: func(t *testing.T, src string) {
				if err := os.Remove(filepath.Join(src, "pages", "index.html")); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: errPlaygroundMissing,
		},
		"permalink of a generated page": {
			modify: func(t *testing.T, src string) {
				writeFile(t, filepath.Join(src, "pages", "reference.md"), `{
  "title": "Reference",
  "template": "layout",
  "permalink": "/reference"
}

Mine.
`)
			},
			wantErr: errPermalinkTaken,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			src := extract(t, "basic.txtar")
			tc.modify(t, src)
			err := Build(&Config{Src: src, Dst: t.TempDir(), SkipFeed: true, Examples: testExamples})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServe(t *testing.T) {
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	addr := fmt.Sprintf("localhost:%d", port)

	var wg sync.WaitGroup

	ready := make(chan struct{})
	serveReadyHook = func() {
		ready <- struct{}{}
	}
	t.Cleanup(func() { serveReadyHook = nil })
	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	c := &Config{
		Src: extract(t, "basic.txtar"),
		Dst: t.TempDir(),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := Serve(ctx, c, addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during startup or runtime: %v", err)
	case <-ready:
	}

	urls := []struct {
		url        string
		wantStatus int
	}{
		{url: "/", wantStatus: http.StatusOK},
		{url: "/about", wantStatus: http.StatusOK},
		{url: "/examples/red", wantStatus: http.StatusNotFound},
		{url: "/examples/basic", wantStatus: http.StatusOK},
		{url: "/examples.json", wantStatus: http.StatusOK},
		{url: "/reference", wantStatus: http.StatusOK},
		{url: "/does-not-exist", wantStatus: http.StatusNotFound},
		{url: "/examples/", wantStatus: http.StatusNotFound},
	}

	for _, u := range urls {
		res, err := http.Get("http://" + addr + u.url)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != u.wantStatus {
			t.Fatalf("GET %s: want status code %d, got %d", u.url, u.wantStatus, res.StatusCode)
		}
	}

	cancel()
	wg.Wait()
	select {
	case err := <-errCh:
		t.Fatalf("Test server crashed during shutdown: %v", err)
	default:
	}
}

// getFreePort asks the kernel for a free open port that is ready to use.
// Copied from
// https://github.com/phayes/freeport/blob/74d24b5ae9f58fbe4057614465b11352f71cdbea/freeport.go.
func getFreePort() (port int, err error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func TestDebouncer(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	done := make(chan struct{}, 1)
	d := newDebouncer(20*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
		done <- struct{}{}
	})
	for range 5 {
		d.Do()
	}
	<-done
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	testutil.AssertEqual(t, calls, 1)
}

func TestShouldRebuild(t *testing.T) {
	cases := map[string]struct {
		path string
		op   fsnotify.Op
		want bool
	}{
		"macOS garbage":   {".DS_Store", fsnotify.Create, false},
		"vim temp file":   {"lololol/4913", fsnotify.Write, false},
		"vim backup file": {"pages/hello.md~", fsnotify.Create, false},
		"vim swap file":   {"pages/.hello.md.swp", fsnotify.Write, false},
		"file creation":   {"pages/hello.md", fsnotify.Create, true},
		"file removal":    {"pages/hello.md", fsnotify.Remove, true},
		"file write":      {"pages/hello.md", fsnotify.Write, true},
		"ignore chmod":    {"pages/hello.md", fsnotify.Chmod, false},
		"ignore rename":   {"pages/hello.md", fsnotify.Rename, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := shouldRebuild(tc.path, tc.op)
			if got != tc.want {
				t.Fatalf("shouldRebuild(%q, %+v): want %v, got %v", tc.path, tc.op, tc.want, got)
			}
		})
	}
}

func TestStripComments(t *testing.T) {
	b := newBuildContext(&Config{})
	tpl := template.Must(template.New("test").Funcs(b.funcs).Parse(`{{ content . }}`))

	const content = `<!-- prettier-ignore-start -->
{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}
<!-- prettier-ignore-end -->

Foo.

<!-- Some comment. -->
<!-- LOL. -->
`

	p := &Page{path: "foo.md"}
	if err := p.parse(strings.NewReader(content)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.build(b, tpl, &buf); err != nil {
		t.Fatal(err)
	}

	got := strings.TrimSpace(buf.String())
	testutil.AssertEqual(t, got, "<p>Foo.</p>")
}

func TestPage(t *testing.T) {
	cases := map[string]struct {
		name, content string
		wantErr       error
		wantDst       string
	}{
		"valid frontmatter": {
			name: "foo.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/"
}

Foo.
`,
			wantDst: "/index.html",
		},
		"nested permalink": {
			name: "nested.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "/docs/nested"
}

Foo.
`,
			wantDst: "/docs/nested.html",
		},
		"no frontmatter": {
			name:    "bar.md",
			content: "Hello, world!",
			wantErr: errFrontmatterMissing,
		},
		"invalid frontmatter (missing title)": {
			name: "invalid.md",
			content: `{
  "template": "layout",
  "permalink": "/"
}

Bar.
`,
			wantErr: errFrontmatterMissingParam,
		},
		"unsupported format": {
			name:    "unsupported.rst",
			content: "Sample text.",
			wantErr: errFormatUnsupported,
		},
		"invalid permalink": {
			name: "permalink.md",
			content: `{
  "title": "Foo",
  "template": "layout",
  "permalink": "dwd/"
}

Test.
`,
			wantErr: errPermalinkInvalid,
		},
		"modeline comment": {
			name: "modeline-comment.html",
			content: `<!-- vim: set ft=gotplhtml: -->
{
  "title": "Foo",
  "template": "test",
  "permalink": "/test"
}

<p>Test!</p>
`,
			wantDst: "/test.html",
		},
		"invalid frontmatter (JSON)": {
			name: "invalid-frontmatter.html",
			content: `{
	"title": 0
}

<p>test</p>
`,
			wantErr: errFrontmatterParse,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := &Page{path: tc.name}
			err := p.parse(strings.NewReader(tc.content))

			if err == nil && tc.wantErr != nil {
				t.Fatalf("must fail with error: %v", tc.wantErr)
			}
			if err != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error: %v", err)
			}
			if tc.wantDst != "" {
				testutil.AssertEqual(t, p.dstPath, tc.wantDst)
			}
		})
	}
}

func TestURLTemplateFunc(t *testing.T) {
	bu := &url.URL{
		Scheme: "https",
		Host:   "example.com",
	}
	cases := map[string]struct {
		c    *Config
		in   string
		want string
	}{
		"env dev (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Dev},
			in:   "/test",
			want: "/test",
		},
		"env prod (base URL not set)": {
			c:    &Config{Env: env.Prod},
			in:   "/lol",
			want: "/lol",
		},
		"env prod (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Prod},
			in:   "/hello",
			want: "https://example.com/hello",
		},
		"env staging (base URL set)": {
			c:    &Config{BaseURL: bu, Env: env.Staging},
			in:   "/examples/basic",
			want: "https://example.com/examples/basic",
		},
		"single slash": {
			c:    &Config{Env: env.Dev},
			in:   "/",
			want: "/",
		},
		"full url": {
			c:    &Config{Env: env.Prod, BaseURL: bu},
			in:   "https://go.astrophena.name",
			want: "https://go.astrophena.name",
		},
	}
	b := &buildContext{}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b.c = tc.c
			got := b.url(tc.in)
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestNavLinkTemplateFunc(t *testing.T) {
	b := newBuildContext(&Config{Env: env.Dev})
	cases := map[string]struct {
		p           *Page
		title, path string
		want        string
	}{
		"current": {
			p:     &Page{Permalink: "/reference"},
			title: "Reference",
			path:  "/reference",
			want:  `<a href="/reference" class="current">Reference</a>`,
		},
		"other": {
			p:     &Page{Permalink: "/"},
			title: "Shaders & more",
			path:  "/reference",
			want:  `<a href="/reference">Shaders &amp; more</a>`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := b.navLink(tc.p, tc.title, tc.path)
			testutil.AssertEqual(t, string(got), tc.want)
		})
	}
}

func TestFormatStaticName(t *testing.T) {
	cases := map[string]struct {
		filename, hash, want string
	}{
		"extension":    {"css/main.css", "abc", "css/main-abc.css"},
		"no extension": {"LICENSE", "abc", "LICENSE-abc"},
		"two dots":     {"js/app.min.js", "abc", "js/app-abc.min.js"},
		"no hash":      {"css/main.css", "", "css/main.css"},
		"empty":        {"", "abc", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, formatStaticName(tc.filename, tc.hash), tc.want)
		})
	}
}

func TestSummarize(t *testing.T) {
	testutil.AssertEqual(t, summarize("First\nline.\n\nSecond."), "First line.")
	testutil.AssertEqual(t, summarize(""), "")
}
