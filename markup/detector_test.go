package markup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dhamidi/markscan/cache"
	"github.com/dhamidi/markscan/stream"
)

func TestFindInlineLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Link
	}{
		{
			name:  "destination and title",
			input: `See [docs](https://go.dev "Go") now.`,
			want: []Link{{
				Kind: Inline, Text: "docs", Destination: "https://go.dev", Title: "Go",
				Span: stream.Span{Start: 4, End: 31},
			}},
		},
		{
			name:  "angle destination",
			input: "[a](<b c>)",
			want: []Link{{
				Kind: Inline, Text: "a", Destination: "b c",
				Span: stream.Span{Start: 0, End: 10},
			}},
		},
		{
			name:  "empty destination",
			input: "[a]()",
			want: []Link{{
				Kind: Inline, Text: "a",
				Span: stream.Span{Start: 0, End: 5},
			}},
		},
		{
			name:  "offsets count code units",
			input: "\U0001F600 [a](b)",
			want: []Link{{
				Kind: Inline, Text: "a", Destination: "b",
				Span: stream.Span{Start: 3, End: 9},
			}},
		},
		{
			name:  "two links",
			input: "[a](b) and [c](d 'e')",
			want: []Link{
				{Kind: Inline, Text: "a", Destination: "b", Span: stream.Span{Start: 0, End: 6}},
				{Kind: Inline, Text: "c", Destination: "d", Title: "e", Span: stream.Span{Start: 11, End: 21}},
			},
		},
		{name: "space before paren", input: "[a] (b)"},
		{name: "junk after destination", input: "[a](b c)"},
		{name: "unclosed text", input: "[a(b)"},
		{name: "escaped bracket", input: `\[a](b)`},
		{name: "inside code span", input: "`[a](b)`"},
		{
			name:  "bracket inside text",
			input: "[x [a](b)",
			want: []Link{{
				Kind: Inline, Text: "x [a", Destination: "b",
				Span: stream.Span{Start: 0, End: 9},
			}},
		},
		{
			name:  "after a failed link",
			input: "[a](b c) [d](e)",
			want: []Link{{
				Kind: Inline, Text: "d", Destination: "e",
				Span: stream.Span{Start: 9, End: 15},
			}},
		},
		{
			name:  "trailing unicode space",
			input: "[a]( b\u00a0)",
			want: []Link{{
				Kind: Inline, Text: "a", Destination: "b",
				Span: stream.Span{Start: 0, End: 8},
			}},
		},
		{
			name:  "after unclosed fences",
			input: "``x` [a](b)",
			want: []Link{{
				Kind: Inline, Text: "a", Destination: "b",
				Span: stream.Span{Start: 5, End: 11},
			}},
		},
		{name: "parenthesized title", input: "[a](b (t))"},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLinks(t, d.Find(tt.input), tt.want)
		})
	}
}

func TestFindAutolinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Link
	}{
		{
			name:  "url",
			input: "<https://x.org/a>",
			want: []Link{{
				Kind: Autolink, Text: "https://x.org/a", Destination: "https://x.org/a",
				Span: stream.Span{Start: 0, End: 17},
			}},
		},
		{
			name:  "email",
			input: "mail <me@example.com>",
			want: []Link{{
				Kind: Autolink, Text: "me@example.com", Destination: "mailto:me@example.com",
				Span: stream.Span{Start: 5, End: 21},
			}},
		},
		{name: "spaces", input: "<not a link>"},
		{name: "no scheme", input: "<x>"},
		{name: "unclosed", input: "<https://x.org"},
	}

	d := NewDetector(WithKinds(Autolink))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLinks(t, d.Find(tt.input), tt.want)
		})
	}
}

func TestFindBareURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Link
	}{
		{
			name:  "trailing period",
			input: "Visit https://go.dev/doc.",
			want: []Link{{
				Kind: BareURL, Text: "https://go.dev/doc", Destination: "https://go.dev/doc",
				Span: stream.Span{Start: 6, End: 24},
			}},
		},
		{
			name:  "www",
			input: "www.example.com",
			want: []Link{{
				Kind: BareURL, Text: "www.example.com", Destination: "http://www.example.com",
				Span: stream.Span{Start: 0, End: 15},
			}},
		},
		{
			name:  "inside parentheses",
			input: "(see http://a.b)",
			want: []Link{{
				Kind: BareURL, Text: "http://a.b", Destination: "http://a.b",
				Span: stream.Span{Start: 5, End: 15},
			}},
		},
		{name: "mid word", input: "xhttp://a.b"},
		{name: "after supplementary letter", input: "\U0001D400https://a.b"},
		{
			name:  "after emoji",
			input: "\U0001F600https://a.b",
			want: []Link{{
				Kind: BareURL, Text: "https://a.b", Destination: "https://a.b",
				Span: stream.Span{Start: 2, End: 13},
			}},
		},
		{name: "prefix only", input: "www. is not a link"},
	}

	d := NewDetector(WithKinds(BareURL))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLinks(t, d.Find(tt.input), tt.want)
		})
	}
}

func TestFindIsLinear(t *testing.T) {
	var fences strings.Builder
	for k := 300; k > 0; k-- {
		fences.WriteString(strings.Repeat("`", k) + " ")
	}

	const n = 100000
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed brackets", strings.Repeat("[", n)},
		{"unclosed parens", strings.Repeat("[a](", n/4)},
		{"shared destination", strings.Repeat("[a](", n/4) + " x)"},
		{"shared angle destination", strings.Repeat("[a](<", n/5) + ">x)"},
		{"unclosed angle", strings.Repeat("[a](<", n/5) + "\n)"},
		{"paren titles", strings.Repeat("[a](x (", n/7) + ")"},
		{"quoted titles", strings.Repeat("[a](x \"", n/7) + ")"},
		{"unclosed fences", fences.String()},
		{"unclosed autolinks", strings.Repeat("<a", n/2)},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			d.Find(tt.input)
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Errorf("Find took %v on %d bytes", elapsed, len(tt.input))
			}
		})
	}
}

func TestWithKindsFilters(t *testing.T) {
	d := NewDetector(WithKinds(Inline))
	links := d.Find("https://x.org <https://y.org> [a](b)")

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d: %+v", len(links), links)
	}
	if links[0].Kind != Inline {
		t.Errorf("Kind = %v, want %v", links[0].Kind, Inline)
	}
}

func TestFindUsesCache(t *testing.T) {
	c, err := cache.New[[]Link](1024)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(WithCache(c))

	first := d.Find("[a](b)")
	first[0].Destination = "mutated"

	second := d.Find("[a](b)")
	if len(second) != 1 || second[0].Destination != "b" {
		t.Errorf("cached result = %+v, want destination %q", second, "b")
	}
	if c.Stats().Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", c.Stats().Hits())
	}
	if c.Cost() != 6 {
		t.Errorf("Cost() = %d, want 6", c.Cost())
	}
}

func TestFindContextStopsWhenCanceled(t *testing.T) {
	c, err := cache.New[[]Link](1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDetector(WithCache(c))
	text := strings.Repeat("[a](b) ", 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	links, err := d.FindContext(ctx, text)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("FindContext() error = %v, want %v", err, context.Canceled)
	}
	if links != nil {
		t.Errorf("FindContext() = %d links after cancel, want none", len(links))
	}
	if c.Cost() != 0 {
		t.Errorf("Cost() = %d, canceled scan was cached", c.Cost())
	}

	links, err = d.FindContext(context.Background(), text)
	if err != nil || len(links) != 1000 {
		t.Errorf("FindContext() = %d links, %v, want 1000, nil", len(links), err)
	}
}

func TestFindWithoutCacheRecomputes(t *testing.T) {
	d := NewDetector()
	a := d.Find("<https://a.b>")
	b := d.Find("<https://a.b>")
	assertLinks(t, b, a)
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("footnote"); err == nil {
		t.Error("ParseKind(\"footnote\") succeeded")
	}
}

func assertLinks(t *testing.T, got, want []Link) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d links, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
