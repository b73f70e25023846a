package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	apperrors "expensascli/internal/errors"
)

const (
	defaultBaseURL   = "https://www.cuitonline.com/search.php"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
)

// RegistryClient queries a public CUIT registry and scrapes the result page.
type RegistryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// RegistryOption configures a RegistryClient.
type RegistryOption func(*RegistryClient)

// WithBaseURL overrides the registry search endpoint.
func WithBaseURL(u string) RegistryOption {
	return func(c *RegistryClient) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client used for registry requests.
func WithHTTPClient(hc *http.Client) RegistryOption {
	return func(c *RegistryClient) { c.httpClient = hc }
}

// NewRegistryClient creates a registry lookup with sane timeouts.
func NewRegistryClient(logger *slog.Logger, opts ...RegistryOption) *RegistryClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &RegistryClient{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fiscal fetches the registry page for cuit and extracts the taxpayer record.
func (c *RegistryClient) Fiscal(ctx context.Context, cuit string) (FiscalInfo, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(cuit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return FiscalInfo{}, apperrors.NewNetworkError("failed to build registry request", err).WithContext("cuit", cuit)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FiscalInfo{}, apperrors.NewNetworkError("registry request failed", err).WithContext("cuit", cuit)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return FiscalInfo{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return FiscalInfo{}, apperrors.NewNetworkError(
			fmt.Sprintf("registry returned status %d", resp.StatusCode), nil).WithContext("cuit", cuit)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return FiscalInfo{}, apperrors.NewNetworkError("failed to read registry response", err).WithContext("cuit", cuit)
	}

	info, err := ParseRegistryPage(string(body))
	if err != nil {
		return FiscalInfo{}, err
	}
	if info.CUIT == "" {
		info.CUIT = cuit
	}
	c.logger.Debug("registry lookup resolved",
		slog.String("cuit", cuit),
		slog.String("name", info.Name))
	return info, nil
}

// ParseRegistryPage extracts the first taxpayer hit from a registry result
// page. Pages list hits as div.hit blocks with h2.denominacion for the name,
// span.cuit for the formatted tax ID and div.doc-facets for category lines.
// When no hit block exists the whole document is scanned as a fallback.
func ParseRegistryPage(page string) (FiscalInfo, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return FiscalInfo{}, apperrors.NewParsingError("failed to parse registry page", err)
	}

	root := findByClass(doc, "div", "hit")
	if root == nil {
		root = doc
	}

	info := FiscalInfo{}
	if n := findByClass(root, "h2", "denominacion"); n != nil {
		info.Name = collapseText(n)
	}
	if n := findByClass(root, "span", "cuit"); n != nil {
		info.CUIT = collapseText(n)
	}
	if n := findByClass(root, "div", "doc-facets"); n != nil {
		facets := splitFacets(n)
		if len(facets) > 0 {
			info.TaxCategory = facets[0]
		}
		if len(facets) > 1 {
			info.PersonType = facets[1]
		}
	}

	if info.Name == "" && info.CUIT == "" {
		return FiscalInfo{}, ErrNotFound
	}
	return info, nil
}

func findByClass(n *html.Node, tag, class string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// collapseText joins all text under n, squeezing runs of whitespace.
func collapseText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// splitFacets returns the non-empty text of each child block under the
// facets container, one entry per line of the rendered page.
func splitFacets(n *html.Node) []string {
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if text := collapseText(c); text != "" {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		if text := collapseText(n); text != "" {
			out = append(out, text)
		}
	}
	return out
}
