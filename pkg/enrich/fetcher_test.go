package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips tags",
			input:    "<p>hello <b>world</b></p>",
			expected: "hello world",
		},
		{
			name:     "strips scripts",
			input:    "<p>keep</p><script>var x = 1;</script><p>this</p>",
			expected: "keep this",
		},
		{
			name:     "strips styles",
			input:    "<style>body { color: red; }</style>text",
			expected: "text",
		},
		{
			name:     "collapses whitespace",
			input:    "a\n\n  b\t\tc",
			expected: "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanHTML(tt.input)
			if got != tt.expected {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAugmentDisabled(t *testing.T) {
	f := NewFetcher(false, nil, nil)
	res := f.Augment(context.Background())
	if res.Text != "" || len(res.Sources) != 0 {
		t.Errorf("disabled fetcher returned content: %+v", res)
	}
}

func TestAugmentFetchesAllowedSeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>CBT reference text</p></body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(true, []string{srv.URL}, []string{srv.URL + "/cbt"})
	res := f.Augment(context.Background())

	if len(res.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(res.Sources))
	}
	if !strings.Contains(res.Text, "CBT reference text") {
		t.Errorf("expected cleaned page text, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "SOURCE "+srv.URL+"/cbt") {
		t.Errorf("expected source header in text, got %q", res.Text)
	}
}

func TestAugmentRejectsUnlistedOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("fetcher contacted an origin that is not allow-listed")
	}))
	defer srv.Close()

	f := NewFetcher(true, []string{"https://en.wikipedia.org"}, []string{srv.URL + "/page"})
	res := f.Augment(context.Background())

	if res.Text != "" || len(res.Sources) != 0 {
		t.Errorf("expected empty result for unlisted origin, got %+v", res)
	}
}

func TestAugmentTruncatesLongPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>" + strings.Repeat("x", 20000) + "</p>"))
	}))
	defer srv.Close()

	f := NewFetcher(true, []string{srv.URL}, []string{srv.URL + "/long"})
	res := f.Augment(context.Background())

	if len(res.Text) > maxPageChars+len("SOURCE :\n\n")+len(srv.URL+"/long") {
		t.Errorf("page text not truncated, got %d chars", len(res.Text))
	}
}

func TestAugmentStopsAtSourceLimit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("<p>page</p>"))
	}))
	defer srv.Close()

	seeds := []string{
		srv.URL + "/1", srv.URL + "/2", srv.URL + "/3", srv.URL + "/4", srv.URL + "/5",
	}
	f := NewFetcher(true, []string{srv.URL}, seeds)
	res := f.Augment(context.Background())

	if len(res.Sources) != maxSources {
		t.Errorf("expected %d sources, got %d", maxSources, len(res.Sources))
	}
	if hits != maxSources {
		t.Errorf("expected %d fetches, got %d", maxSources, hits)
	}
}
