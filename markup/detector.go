package markup

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dhamidi/markscan/stream"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("markscan.markup")

// Cache memoizes Find results by input. The cost of an entry is the
// length of the input in UTF-16 code units. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(key string) ([]Link, bool)
	Set(key string, links []Link, cost int) bool
}

// Detector finds links in text. A Detector is safe for concurrent use if
// its Cache is.
type Detector struct {
	cache Cache
	kinds uint8
}

// Option configures a Detector.
type Option func(*Detector)

// WithCache memoizes results in c.
func WithCache(c Cache) Option {
	return func(d *Detector) {
		d.cache = c
	}
}

// WithKinds restricts detection to kinds.
func WithKinds(kinds ...Kind) Option {
	return func(d *Detector) {
		d.kinds = 0
		for _, k := range kinds {
			d.kinds |= 1 << k
		}
	}
}

// NewDetector returns a detector for every kind of link and no cache.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{}
	WithKinds(AllKinds...)(d)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Find returns the links in text in order of appearance. It runs in time
// linear in the length of text.
func (d *Detector) Find(text string) []Link {
	links, _ := d.FindContext(context.Background(), text)
	return links
}

// FindContext is Find that gives up once ctx is done. A canceled scan
// returns ctx.Err() and is not cached.
func (d *Detector) FindContext(ctx context.Context, text string) ([]Link, error) {
	key := strconv.Itoa(int(d.kinds)) + ":" + text
	if d.cache != nil {
		if links, ok := d.cache.Get(key); ok {
			return slices.Clone(links), nil
		}
	}

	p := stream.New(text)
	links, err := d.scan(ctx, p)
	if err != nil {
		log.Debugf("scan stopped at %d of %d code units: %s", p.Position(), p.Len(), err)
		return nil, err
	}
	log.Debugf("found %d links in %d code units", len(links), p.Len())

	if d.cache != nil {
		d.cache.Set(key, slices.Clone(links), p.Len())
	}
	return links, nil
}

func (d *Detector) enabled(k Kind) bool {
	return d.kinds&(1<<k) != 0
}

// cancelCheckInterval is how many steps the scan takes between checks of
// its context.
const cancelCheckInterval = 4096

func (d *Detector) scan(ctx context.Context, p *stream.Parser) ([]Link, error) {
	s := newScanState(p)
	var links []Link
	for step := 0; p.HasNext(); step++ {
		if step%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r, _ := p.Peek()
		switch r {
		case '\\':
			p.NextCodeUnit()
			p.NextCodeUnit()
			continue
		case '`':
			s.skipCodeSpan()
			continue
		}

		if link, ok := d.next(s, r); ok {
			links = append(links, link)
			continue
		}
		p.NextCodeUnit()
	}
	return links, nil
}

func (d *Detector) next(s *scanState, r rune) (Link, bool) {
	p := s.p
	switch {
	case r == '[' && d.enabled(Inline):
		return s.parseInline()
	case r == '<' && d.enabled(Autolink):
		return parseAutolink(p)
	case d.enabled(BareURL) && atWordStart(p):
		return parseBareURL(p)
	}
	return Link{}, false
}

// skipCodeSpan moves past a backtick code span. An unclosed run of
// backticks is skipped on its own.
func (s *scanState) skipCodeSpan() {
	p := s.p
	if s.fences == nil {
		s.fences = indexFences(p)
	}
	fence := p.ReadRun('`', stream.Unbounded)
	if s.fences.closes(p.Position(), len(fence)) {
		p.ReadPastString(fence)
	}
}

// innerSpace is what surrounds the destination and title of an inline
// link.
var innerSpace stream.CharSet = unicode.IsSpace

func (s *scanState) parseInline() (Link, bool) {
	p := s.p
	start := p.Position()
	if start <= s.bracketSkip {
		return Link{}, false
	}
	closing := s.brackets.next(p)
	if closing < 0 {
		return Link{}, false
	}
	link, ok := s.inlineAt(start, closing)
	if !ok {
		// What follows the "]" decides the outcome, so every "[" before
		// it fails too.
		s.bracketSkip = closing
		p.SetPosition(start)
	}
	return link, ok
}

func (s *scanState) inlineAt(start, closing int) (Link, bool) {
	p := s.p
	p.SetPosition(closing + 1)
	if r, ok := p.Peek(); !ok || r != '(' {
		return Link{}, false
	}
	p.NextCodeUnit()
	open := p.Position()
	end := s.parens.next(p)
	if end < 0 {
		return Link{}, false
	}
	dest, title, ok := s.splitDestination(p.Sub(stream.Span{Start: open, End: end}), open)
	if !ok {
		return Link{}, false
	}

	p.SetPosition(start)
	text, _ := p.ParseLinkText(false)
	p.SetPosition(end + 1)
	return Link{
		Kind:        Inline,
		Text:        text,
		Destination: dest,
		Title:       title,
		Span:        stream.Span{Start: start, End: end + 1},
	}, true
}

// splitDestination parses the text between the parentheses of an inline
// link as a destination followed by an optional title. Offsets in inner
// start at base.
func (s *scanState) splitDestination(inner *stream.Parser, base int) (dest, title string, ok bool) {
	inner.ReadWhileIn(innerSpace, stream.Unbounded)
	if r, more := inner.Peek(); more {
		at := base + inner.Position()
		switch r {
		case '(':
			// inner ends at the first ")", so this can never close.
			return "", "", false
		case '<':
			if s.angle.Contains(at) {
				return "", "", false
			}
			m := inner.Mark()
			inner.NextCodeUnit()
			stop, _ := inner.ScanUntil('>', true)
			s.angle = stream.Span{Start: at, End: base + stop + 1}
			inner.Reset(m)
		default:
			if s.bare.Contains(at) {
				return "", "", false
			}
		}
		dest, ok = inner.ParseLinkDestination()
		if !ok {
			return "", "", false
		}
		if r != '<' {
			s.bare = stream.Span{Start: at, End: base + inner.Position()}
			if !inner.HasNext() {
				dest = strings.TrimRightFunc(dest, unicode.IsSpace)
			}
		}
	}

	m := inner.Mark()
	inner.SkipWhitespace(stream.Unbounded)
	next, _ := inner.Peek()
	inner.Reset(m)
	if next == '(' {
		return "", "", false
	}
	title, _ = inner.ParseLinkTitle()

	inner.ReadWhileIn(innerSpace, stream.Unbounded)
	if inner.HasNext() {
		return "", "", false
	}
	return dest, title, true
}

var (
	autolinkStop = stream.Union(stream.CharsOf("<> "), stream.Controls)
	schemeChars  = stream.Union(
		stream.DecimalDigits,
		stream.CharsOf("+.-"),
		func(r rune) bool { return r < 0x80 && unicode.IsLetter(r) },
	)
)

func parseAutolink(p *stream.Parser) (Link, bool) {
	m := p.Mark()
	if !p.ReadString("<") {
		return Link{}, false
	}
	body, found, ok := p.ReadUntilCharIn(autolinkStop, true)
	if !ok || found != '>' || body == "" {
		p.Reset(m)
		return Link{}, false
	}

	dest := body
	switch {
	case hasScheme(body):
	case isEmail(body):
		dest = "mailto:" + body
	default:
		p.Reset(m)
		return Link{}, false
	}
	return Link{
		Kind:        Autolink,
		Text:        body,
		Destination: dest,
		Span:        p.SpanFrom(m),
	}, true
}

// hasScheme reports whether s starts with a URI scheme of 2 to 32
// characters followed by a colon.
func hasScheme(s string) bool {
	p := stream.New(s)
	scheme := p.ReadWhileIn(schemeChars, 32)
	if len(scheme) < 2 || !unicode.IsLetter(rune(scheme[0])) {
		return false
	}
	return p.ReadString(":")
}

func isEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && strings.Contains(domain, ".") &&
		!strings.ContainsAny(s, ":\\") && !strings.HasSuffix(domain, ".")
}

var (
	bareURLPrefixes = []string{"https://", "http://", "mailto:", "www."}
	urlChars        = stream.Not(stream.Union(stream.Controls, stream.CharsOf(" <>\"`")))
)

// trailingPunctuation is dropped from the end of a bare URL.
const trailingPunctuation = ".,:;!?'*_~)"

func parseBareURL(p *stream.Parser) (Link, bool) {
	m := p.Mark()
	prefix, ok := p.ReadAnyString(bareURLPrefixes...)
	if !ok {
		return Link{}, false
	}
	body := p.ReadWhileIn(urlChars, stream.Unbounded)
	trimmed := strings.TrimRight(body, trailingPunctuation)
	if trimmed == "" {
		p.Reset(m)
		return Link{}, false
	}
	// The trimmed suffix is ASCII, so its byte length is its length in
	// code units.
	p.SetPosition(p.Position() - (len(body) - len(trimmed)))

	text := prefix + trimmed
	dest := text
	if prefix == "www." {
		dest = "http://" + text
	}
	return Link{
		Kind:        BareURL,
		Text:        text,
		Destination: dest,
		Span:        p.SpanFrom(m),
	}, true
}

func atWordStart(p *stream.Parser) bool {
	r, ok := p.PrevRune()
	return !ok || !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
