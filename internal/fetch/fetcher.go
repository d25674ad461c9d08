package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagebuddy-backend/internal/models"
)

const userAgent = "PageBuddy/1.0 (+https://pagebuddy.app)"

// maxBodyBytes caps how much of a response we read before extraction.
const maxBodyBytes = 2 << 20 // 2MB

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]{2,}`)
)

// Fetcher turns a URL into readable page text. Failures never surface as
// errors: the result is a string starting with models.ErrorFetchPrefix.
type Fetcher struct {
	client     *http.Client
	charBudget int
	logger     *zap.Logger
}

func NewFetcher(timeout time.Duration, charBudget int, logger *zap.Logger) *Fetcher {
	if charBudget <= 0 {
		charBudget = 20000
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		charBudget: charBudget,
		logger:     logger,
	}
}

// Fetch issues a single GET and extracts the visible text of the page.
func (f *Fetcher) Fetch(ctx context.Context, url string) *models.Content {
	text := f.fetchText(ctx, url)

	content := &models.Content{
		Source:    "url",
		URL:       url,
		FetchedAt: time.Now(),
	}
	content.Text, content.Truncated = Truncate(text, f.charBudget)
	content.CharCount = len(content.Text)
	return content
}

func (f *Fetcher) fetchText(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Sprintf("%s invalid URL %s (%v)", models.ErrorFetchPrefix, url, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
		return fmt.Sprintf("%s could not fetch %s (%v)", models.ErrorFetchPrefix, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("page fetch non-2xx", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return fmt.Sprintf("%s %s returned HTTP %d", models.ErrorFetchPrefix, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Sprintf("%s could not read %s (%v)", models.ErrorFetchPrefix, url, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		return strings.TrimSpace(string(body))
	}

	text, err := ExtractReadableText(string(body))
	if err != nil {
		return fmt.Sprintf("%s could not parse %s (%v)", models.ErrorFetchPrefix, url, err)
	}
	if text == "" {
		return fmt.Sprintf("%s no readable text at %s", models.ErrorFetchPrefix, url)
	}

	f.logger.Info("page fetched", zap.String("url", url), zap.Int("chars", len(text)))
	return text
}

// ExtractReadableText parses an HTML document and returns the visible text of
// its main content region: <main> preferred, then <article>, then <body>.
func ExtractReadableText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	root := findFirst(doc, "main")
	if root == nil {
		root = findFirst(doc, "article")
	}
	if root == nil {
		root = findFirst(doc, "body")
	}
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	walkText(root, &sb, 0)

	return collapseWhitespace(sb.String()), nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func walkText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return // Prevent excessive recursion
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "nav", "header", "footer", "form", "iframe", "svg", "img":
			return // Skip non-content elements
		case "p", "div", "section", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			sb.WriteString("\n")
		case "br":
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb, depth+1)
	}
}

func collapseWhitespace(s string) string {
	s = multiSpacePattern.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// Truncate hard-caps text at budget characters, appending an ellipsis marker
// when anything was cut. Reports whether truncation happened.
func Truncate(text string, budget int) (string, bool) {
	if len(text) <= budget {
		return text, false
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…", true
}
