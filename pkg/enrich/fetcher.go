package enrich

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	maxPageChars  = 4000
	maxTotalChars = 9000
	maxSources    = 3
)

var defaultSeeds = []string{
	"https://en.wikipedia.org/wiki/Cognitive_behavioral_therapy",
	"https://en.wikipedia.org/wiki/Dialectical_behavior_therapy",
	"https://cmha.ca/find-info/mental-health/",
	"https://www.nimh.nih.gov/health/topics/attention-deficit-hyperactivity-disorder-adhd",
	"https://www.hopeforwellness.ca",
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<script.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Result carries the combined reference text and the source URLs that
// contributed to it.
type Result struct {
	Text    string
	Sources []string
}

// Fetcher pulls reference material from a fixed set of seed pages.
// Only origins on the allow-list are ever contacted.
type Fetcher struct {
	client    *resty.Client
	enabled   bool
	allowlist []string
	seeds     []string
}

func NewFetcher(enabled bool, allowlist, seeds []string) *Fetcher {
	if len(seeds) == 0 {
		seeds = defaultSeeds
	}
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	return &Fetcher{
		client:    client,
		enabled:   enabled,
		allowlist: allowlist,
		seeds:     seeds,
	}
}

func (f *Fetcher) Enabled() bool {
	return f.enabled
}

// Augment fetches up to maxSources seed pages and joins their cleaned text.
// Fetch errors and disallowed origins are skipped, never surfaced: the
// result is advisory and the chat flow must not depend on it.
func (f *Fetcher) Augment(ctx context.Context) Result {
	if !f.enabled {
		return Result{}
	}

	var chunks []string
	var used []string
	for _, seed := range f.seeds {
		text := f.fetchSafe(ctx, seed)
		if text == "" {
			continue
		}
		chunks = append(chunks, "SOURCE "+seed+":\n"+text+"\n")
		used = append(used, seed)
		if len(chunks) >= maxSources {
			break
		}
	}

	combined := strings.Join(chunks, "\n---\n")
	if len(combined) > maxTotalChars {
		combined = combined[:maxTotalChars]
	}
	return Result{Text: combined, Sources: used}
}

func (f *Fetcher) fetchSafe(ctx context.Context, rawURL string) string {
	if !f.allowed(rawURL) {
		return ""
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return ""
	}

	text := CleanHTML(string(resp.Body()))
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text
}

func (f *Fetcher) allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	origin := u.Scheme + "://" + u.Host
	for _, dom := range f.allowlist {
		if dom != "" && strings.HasPrefix(origin, dom) {
			return true
		}
	}
	return false
}

// CleanHTML strips scripts, styles, and markup, collapsing the remainder
// into single-spaced text.
func CleanHTML(html string) string {
	out := scriptPattern.ReplaceAllString(html, "")
	out = stylePattern.ReplaceAllString(out, "")
	out = tagPattern.ReplaceAllString(out, " ")
	out = spacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
