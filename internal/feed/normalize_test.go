package feed

import (
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "strips query and fragment",
			in:   "https://Example.com/news/story?utm_source=rss#section",
			want: "https://example.com/news/story",
			ok:   true,
		},
		{
			name: "lowercases host only",
			in:   "https://WWW.Example.COM/News/Story",
			want: "https://www.example.com/News/Story",
			ok:   true,
		},
		{
			name: "trims surrounding whitespace",
			in:   "  https://example.com/a  ",
			want: "https://example.com/a",
			ok:   true,
		},
		{name: "rejects missing scheme", in: "example.com/a", ok: false},
		{name: "rejects empty input", in: "", ok: false},
		{name: "rejects garbage", in: "::::not a url", ok: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := NormalizeURL(tt.in)
			if ok != tt.ok {
				t.Fatalf("NormalizeURL(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	first, ok := NormalizeURL("https://Example.com/path?q=1")
	if !ok {
		t.Fatal("first normalization failed")
	}
	second, ok := NormalizeURL(first)
	if !ok {
		t.Fatal("second normalization failed")
	}
	if first != second {
		t.Fatalf("normalization is not idempotent: %q != %q", first, second)
	}
}

func TestExtractSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.sciencedaily.com/rss/all.xml", "sciencedaily.com"},
		{"https://feeds.feedburner.com/Edutopia", "feeds.feedburner.com"},
		{"not a url at all %%%", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		if got := ExtractSource(tt.in); got != tt.want {
			t.Errorf("ExtractSource(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
