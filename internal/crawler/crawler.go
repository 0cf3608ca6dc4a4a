// Package crawler mirrors a documentation site into the corpus directory.
//
// The crawl is bounded by depth and page count, stays on the start URL's
// host, and writes one markdown file per page so the loader picks the
// pages up like any other document.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Fetcher retrieves one page. The narrow interface keeps tests off the
// network.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPFetcher fetches pages with an http.Client.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Crawler walks same-host links breadth-first.
type Crawler struct {
	fetcher  Fetcher
	maxDepth int
	maxPages int
	outDir   string
}

// New creates a crawler writing markdown files into outDir.
func New(fetcher Fetcher, outDir string, maxDepth, maxPages int) *Crawler {
	return &Crawler{
		fetcher:  fetcher,
		maxDepth: maxDepth,
		maxPages: maxPages,
		outDir:   outDir,
	}
}

type queueItem struct {
	url   string
	depth int
}

// Crawl mirrors pages reachable from startURL and reports how many were
// written.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (int, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return 0, fmt.Errorf("parse start url: %w", err)
	}
	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return 0, err
	}

	seen := map[string]bool{start.String(): true}
	queue := []queueItem{{url: start.String(), depth: 0}}
	written := 0

	for len(queue) > 0 && written < c.maxPages {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		item := queue[0]
		queue = queue[1:]

		body, err := c.fetcher.Fetch(ctx, item.url)
		if err != nil {
			// A dead link ends one branch, not the crawl.
			continue
		}

		doc, err := html.Parse(strings.NewReader(string(body)))
		if err != nil {
			continue
		}

		if err := c.writePage(item.url, doc); err != nil {
			return written, err
		}
		written++

		if item.depth >= c.maxDepth {
			continue
		}
		for _, link := range extractLinks(doc, start) {
			if !seen[link] {
				seen[link] = true
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
		}
	}
	return written, nil
}

// writePage renders the parsed page as markdown and stores it under a
// name derived from the URL path.
func (c *Crawler) writePage(pageURL string, doc *html.Node) error {
	var b strings.Builder
	b.WriteString("<!-- source: " + pageURL + " -->\n\n")
	renderMarkdown(doc, &b)

	name := pageSlug(pageURL) + ".md"
	return os.WriteFile(filepath.Join(c.outDir, name), []byte(b.String()), 0o644)
}

// pageSlug turns a URL into a filesystem-safe file name.
func pageSlug(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "page"
	}
	slug := strings.Trim(u.Path, "/")
	if slug == "" {
		slug = "index"
	}
	out := make([]byte, 0, len(slug))
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// extractLinks collects absolute same-host links from anchor tags.
func extractLinks(doc *html.Node, base *url.URL) []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref)
				abs.Fragment = ""
				if abs.Host == base.Host && (abs.Scheme == "http" || abs.Scheme == "https") {
					links = append(links, abs.String())
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}

// renderMarkdown extracts headings, paragraphs and list items as plain
// markdown. Scripts, styles and navigation chrome are dropped.
func renderMarkdown(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			text := nodeText(n)
			if text != "" {
				b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
			}
			return
		case "p":
			text := nodeText(n)
			if text != "" {
				b.WriteString(text + "\n\n")
			}
			return
		case "li":
			text := nodeText(n)
			if text != "" {
				b.WriteString("- " + text + "\n")
			}
			return
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		renderMarkdown(child, b)
	}
}

// nodeText flattens the text content of a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}
