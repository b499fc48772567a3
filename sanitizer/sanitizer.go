// Package sanitizer neutralizes untrusted text before it reaches a terminal or a
// JSON document, and renders values that have no safe serialized form.
package sanitizer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterANSIEscape                      // ESC, the lead byte of terminal control sequences
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // JSON-style backslash escape
)

// PolicyPreset defines pre-configured sanitization policies
type PolicyPreset string

const (
	PolicyRaw      PolicyPreset = "raw"      // Passthrough
	PolicyJSON     PolicyPreset = "json"     // Strings embedded in JSON
	PolicyTerminal PolicyPreset = "terminal" // Text written to an interactive console
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:  {},
	PolicyJSON: {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyTerminal: {
		{filter: FilterANSIEscape, transform: TransformHexEncode},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
}

// Ordered so that the first matching flag is deterministic
var filterOrder = []uint64{FilterANSIEscape, FilterControl, FilterNonPrintable}

var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) },
	FilterControl:      unicode.IsControl,
	FilterANSIEscape:   func(r rune) bool { return r == 0x1b },
}

// Sanitizer provides chainable text sanitization. Not safe for concurrent use.
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{buf: make([]byte, 0, 256)}
}

// Rule appends a custom rule; the earliest matching rule wins
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	s.buf = s.buf[:0]

	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, flag := range filterOrder {
		if filterMask&flag != 0 && filterCheckers[flag](r) {
			return true
		}
	}
	return false
}

func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case transformMask&TransformStrip != 0:

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			*buf = append(*buf, '\\', 'n')
		case '\r':
			*buf = append(*buf, '\\', 'r')
		case '\t':
			*buf = append(*buf, '\\', 't')
		default:
			*buf = append(*buf, fmt.Sprintf("\\u%04x", r)...)
		}
	}
}

// Serializer implements format-specific string output
type Serializer struct {
	format    string
	sanitizer *Sanitizer
}

// NewSerializer creates a serializer for "txt" or "json" output
func NewSerializer(format string, san *Sanitizer) *Serializer {
	if san == nil {
		san = New()
	}
	return &Serializer{format: format, sanitizer: san}
}

// WriteString writes s, quoting and escaping as the format requires
func (se *Serializer) WriteString(buf *[]byte, s string) {
	switch se.format {
	case "json":
		appendJSONString(buf, s)

	default:
		sanitized := se.sanitizer.Sanitize(s)
		if !se.NeedsQuotes(sanitized) {
			*buf = append(*buf, sanitized...)
			return
		}
		*buf = append(*buf, '"')
		for i := 0; i < len(sanitized); i++ {
			if sanitized[i] == '"' || sanitized[i] == '\\' {
				*buf = append(*buf, '\\')
			}
			*buf = append(*buf, sanitized[i])
		}
		*buf = append(*buf, '"')
	}
}

// NeedsQuotes determines if quoting is needed for txt output
func (se *Serializer) NeedsQuotes(s string) bool {
	if se.format == "json" {
		return true
	}
	if len(s) == 0 {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return true
		}
		switch r {
		case '"', '\'', '\\', '=', '{', '}', '[', ']':
			return true
		}
	}
	return false
}

func appendJSONString(buf *[]byte, s string) {
	*buf = append(*buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == '"':
			*buf = append(*buf, '\\', c)
		case c == '\n':
			*buf = append(*buf, '\\', 'n')
		case c == '\r':
			*buf = append(*buf, '\\', 'r')
		case c == '\t':
			*buf = append(*buf, '\\', 't')
		case c < 0x20 || c == 0x7f:
			*buf = append(*buf, fmt.Sprintf("\\u%04x", c)...)
		default:
			*buf = append(*buf, c)
		}
	}
	*buf = append(*buf, '"')
}

// dumper renders values for placeholders; pointer addresses would make output nondeterministic
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                6,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// Dump renders v with spew for use as a placeholder of an unserializable value.
// Control characters are hex-encoded and the result is cut at limit bytes.
// Dump recovers from panics raised while walking v.
func Dump(v any, limit int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("<dump failed: %v>", r)
		}
	}()

	var b bytes.Buffer
	dumper.Fdump(&b, v)
	flat := bytes.ReplaceAll(bytes.TrimSpace(b.Bytes()), []byte("\n"), []byte(" "))
	dumped := New().Policy(PolicyTerminal).Sanitize(string(flat))
	if limit > 0 && len(dumped) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(dumped[cut]) {
			cut--
		}
		dumped = dumped[:cut] + "...(truncated)"
	}
	return dumped
}
