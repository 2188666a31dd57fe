// Package tagfmt implements the printf/scanf-like field-tag format
// template described in SPEC_FULL.md §4.2: a small compiled grammar over
// {%d, %r, %z, %i, %%} used to translate between a record's raw tag
// representation (a 3-char ASCII string in ISO, a uint16 in MST) and the
// tag strings shown to users (and read back from JSON/CSV).
package tagfmt

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scieloorg/ioisis-go/internal/errs"
)

// Mode selects whether the raw tag is a fixed-width ASCII string (ISO)
// or an unsigned integer (MST).
type Mode int

const (
	// StringMode is used for ISO 2709's 3-character ASCII tags.
	StringMode Mode = iota
	// IntMode is used for MST's uint16 tags.
	IntMode
)

type specifier struct {
	// literal holds the literal text to emit/match, when r == 0.
	literal string
	// r is the specifier rune ('d', 'r', 'z', 'i'); 0 for a literal run.
	r        byte
	width    int
	widthSet bool
	zeroPad  bool
}

// Template is a compiled field-tag format template.
type Template struct {
	mode     Mode
	tagWidth int // StringMode only: the canonical raw tag width (3 in ISO)
	source   string
	parts    []specifier
	re       *regexp.Regexp
	// groups maps each capturing group's 1-based index back to the
	// specifier that produced it, in declaration order.
	groups []specifier
}

// Compile parses template and builds both the render and scan sides.
// tagWidth is only meaningful in StringMode (pass 0 in IntMode).
func Compile(mode Mode, tagWidth int, template string) (*Template, error) {
	t := &Template{mode: mode, tagWidth: tagWidth, source: template}

	i := 0
	for i < len(template) {
		if template[i] != '%' {
			start := i
			for i < len(template) && template[i] != '%' {
				i++
			}
			t.parts = append(t.parts, specifier{literal: template[start:i]})
			continue
		}
		i++ // consume '%'
		if i >= len(template) {
			return nil, &errs.InvalidTagTemplate{Template: template, Reason: "trailing '%'"}
		}
		zeroPad := false
		if template[i] == '0' {
			zeroPad = true
		}
		widthStart := i
		for i < len(template) && template[i] >= '0' && template[i] <= '9' {
			i++
		}
		widthSet := i > widthStart
		width := 0
		if widthSet {
			w, err := strconv.Atoi(template[widthStart:i])
			if err != nil {
				return nil, &errs.InvalidTagTemplate{Template: template, Reason: "bad width"}
			}
			width = w
		}
		if i >= len(template) {
			return nil, &errs.InvalidTagTemplate{Template: template, Reason: "missing specifier after width"}
		}
		r := template[i]
		i++
		switch r {
		case '%':
			t.parts = append(t.parts, specifier{literal: "%"})
		case 'd', 'r', 'z', 'i':
			t.parts = append(t.parts, specifier{r: r, width: width, widthSet: widthSet, zeroPad: zeroPad})
		default:
			return nil, &errs.InvalidTagTemplate{Template: template, Reason: fmt.Sprintf("unknown specifier %%%c", r)}
		}
	}

	if err := t.compileRegex(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) compileRegex() error {
	var b strings.Builder
	b.WriteByte('^')
	for _, p := range t.parts {
		if p.r == 0 {
			b.WriteString(regexp.QuoteMeta(p.literal))
			continue
		}
		pattern := t.groupPattern(p)
		b.WriteByte('(')
		b.WriteString(pattern)
		b.WriteByte(')')
		t.groups = append(t.groups, p)
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return &errs.InvalidTagTemplate{Template: t.source, Reason: err.Error()}
	}
	t.re = re
	return nil
}

func (t *Template) groupPattern(p specifier) string {
	switch p.r {
	case 'r':
		if t.mode == StringMode {
			width := t.tagWidth
			if p.widthSet {
				width = p.width
			}
			if width <= 0 {
				return `.*`
			}
			return fmt.Sprintf(`.{%d}`, width)
		}
		fallthrough
	case 'd':
		if p.widthSet {
			if p.zeroPad {
				return fmt.Sprintf(`\d{%d}`, p.width)
			}
			return fmt.Sprintf(`[ \d]{%d}`, p.width)
		}
		return `\d+`
	case 'z':
		if p.widthSet {
			return fmt.Sprintf(`[ ]{0,%d}(?:0|[1-9]\d*)`, p.width)
		}
		return `0|[1-9]\d*`
	case 'i':
		if p.widthSet {
			if p.zeroPad {
				return fmt.Sprintf(`\d{%d}`, p.width)
			}
			return fmt.Sprintf(`[ \d]{%d}`, p.width)
		}
		return `\d+`
	}
	return ``
}

func pad(s string, width int, zeroPad bool) string {
	if width <= 0 || len(s) >= width {
		return s
	}
	fill := " "
	if zeroPad {
		fill = "0"
	}
	return strings.Repeat(fill, width-len(s)) + s
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// RawTag is the decoded raw tag: a string in StringMode, a uint16 in
// IntMode.
type RawTag struct {
	Str string
	Int uint16
}

// Render renders the tag (with the record-relative field index) per the
// compiled template.
func (t *Template) Render(tag RawTag, index int) (string, error) {
	var buf bytes.Buffer
	for _, p := range t.parts {
		if p.r == 0 {
			buf.WriteString(p.literal)
			continue
		}
		s, err := t.renderSpec(p, tag, index)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}

func (t *Template) renderSpec(p specifier, tag RawTag, index int) (string, error) {
	switch p.r {
	case 'i':
		return pad(strconv.Itoa(index), p.width, p.zeroPad), nil
	case 'r':
		if t.mode == StringMode {
			s := tag.Str
			if p.widthSet {
				if len(s) > p.width {
					s = s[:p.width]
				}
				s = pad(s, p.width, p.zeroPad)
			}
			return s, nil
		}
		return pad(strconv.FormatUint(uint64(tag.Int), 10), p.width, p.zeroPad), nil
	case 'd':
		n, err := t.numericValue(tag)
		if err != nil {
			return "", err
		}
		return pad(strconv.FormatInt(n, 10), p.width, p.zeroPad), nil
	case 'z':
		n, err := t.numericValue(tag)
		if err != nil {
			return "", err
		}
		s := stripLeadingZeros(strconv.FormatInt(n, 10))
		return pad(s, p.width, p.zeroPad), nil
	}
	return "", nil
}

func (t *Template) numericValue(tag RawTag) (int64, error) {
	if t.mode == IntMode {
		return int64(tag.Int), nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(tag.Str), 10, 64)
	if err != nil {
		return 0, &errs.FormatError{Context: "tag template", Reason: fmt.Sprintf("tag %q is not numeric", tag.Str)}
	}
	return n, nil
}

// Scan parses a rendered tag string back into its raw tag and
// record-relative field index, per the compiled template.
func (t *Template) Scan(s string) (RawTag, int, error) {
	m := t.re.FindStringSubmatch(s)
	if m == nil {
		return RawTag{}, 0, &errs.FormatError{Context: "tag template", Reason: fmt.Sprintf("%q does not match template %q", s, t.source)}
	}

	type decoded struct {
		hasInt bool
		n      int64
		str    string
	}
	byKind := map[byte][]decoded{}
	index := 0
	haveIndex := false

	for gi, p := range t.groups {
		raw := strings.TrimSpace(m[gi+1])
		switch p.r {
		case 'i':
			n, err := strconv.Atoi(raw)
			if err != nil {
				return RawTag{}, 0, &errs.FormatError{Context: "tag template", Reason: "bad %i capture"}
			}
			if haveIndex && index != n {
				return RawTag{}, 0, &errs.AmbiguousTagTemplate{Template: t.source, Spec: 'i'}
			}
			index, haveIndex = n, true
		case 'r':
			if t.mode == StringMode {
				byKind['r'] = append(byKind['r'], decoded{str: m[gi+1]})
			} else {
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return RawTag{}, 0, &errs.FormatError{Context: "tag template", Reason: "bad %r capture"}
				}
				byKind['r'] = append(byKind['r'], decoded{hasInt: true, n: n})
			}
		case 'd', 'z':
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return RawTag{}, 0, &errs.FormatError{Context: "tag template", Reason: "bad numeric capture"}
			}
			byKind[p.r] = append(byKind[p.r], decoded{hasInt: true, n: n})
		}
	}

	// Cross-check numeric specifiers (%d, %z, and %r in IntMode) agree.
	var canonical *decoded
	for _, kind := range []byte{'d', 'z', 'r'} {
		if kind == 'r' && t.mode == StringMode {
			continue
		}
		for _, d := range byKind[kind] {
			if canonical == nil {
				dd := d
				canonical = &dd
			} else if canonical.n != d.n {
				return RawTag{}, 0, &errs.AmbiguousTagTemplate{Template: t.source, Spec: kind}
			}
		}
	}
	// Cross-check %r (StringMode) occurrences agree with each other.
	var rawStr *string
	if t.mode == StringMode {
		for _, d := range byKind['r'] {
			if rawStr == nil {
				s := d.str
				rawStr = &s
			} else if *rawStr != d.str {
				return RawTag{}, 0, &errs.AmbiguousTagTemplate{Template: t.source, Spec: 'r'}
			}
		}
	}

	var tag RawTag
	switch {
	case t.mode == StringMode && rawStr != nil:
		tag.Str = *rawStr
	case t.mode == StringMode && canonical != nil:
		tag.Str = pad(strconv.FormatInt(canonical.n, 10), t.tagWidth, true)
	case t.mode == IntMode && canonical != nil:
		tag.Int = uint16(canonical.n)
	default:
		return RawTag{}, 0, &errs.InvalidTagTemplate{Template: t.source, Reason: "template captures no tag information"}
	}
	return tag, index, nil
}
