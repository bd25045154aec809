// Package moduleroot rewrites logical module requests onto configured module
// roots. It is the last resort once every runfiles candidate has failed.
package moduleroot

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule rewrites the first match of Pattern using Substitution. Substitution
// understands $1..$99, $<name>, $& (the match), $` and $' (the text before and
// after it) and $$ (a literal dollar). A reference to a group the pattern does
// not have is kept literally, so "$1_impl" is group 1 followed by "_impl".
type Rule struct {
	Pattern      *regexp.Regexp
	Substitution string
}

// NewRule compiles pattern into a Rule.
func NewRule(pattern, substitution string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("moduleroot: compile %q: %w", pattern, err)
	}
	return Rule{Pattern: re, Substitution: substitution}, nil
}

// MustRule is NewRule that panics on an invalid pattern.
func MustRule(pattern, substitution string) Rule {
	rule, err := NewRule(pattern, substitution)
	if err != nil {
		panic(err)
	}
	return rule
}

// Apply returns logical with the first match replaced.
func (r Rule) Apply(logical string) string {
	if r.Pattern == nil {
		return logical
	}
	loc := r.Pattern.FindStringSubmatchIndex(logical)
	if loc == nil {
		return logical
	}
	var dst []byte
	dst = append(dst, logical[:loc[0]]...)
	dst = r.expand(dst, logical, loc)
	dst = append(dst, logical[loc[1]:]...)
	return string(dst)
}

func (r Rule) expand(dst []byte, src string, loc []int) []byte {
	tmpl := r.Substitution
	groups := len(loc)/2 - 1
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			dst = append(dst, c)
			continue
		}
		switch next := tmpl[i+1]; {
		case next == '$':
			dst = append(dst, '$')
			i++
		case next == '&':
			dst = append(dst, src[loc[0]:loc[1]]...)
			i++
		case next == '`':
			dst = append(dst, src[:loc[0]]...)
			i++
		case next == '\'':
			dst = append(dst, src[loc[1]:]...)
			i++
		case isDigit(next):
			n, width := groupRef(tmpl[i+1:], groups)
			if width == 0 {
				dst = append(dst, c)
				continue
			}
			dst = appendGroup(dst, src, loc, n)
			i += width
		case next == '<' && r.hasNamedGroups():
			end := strings.IndexByte(tmpl[i+2:], '>')
			if end < 0 {
				dst = append(dst, c)
				continue
			}
			if n := r.Pattern.SubexpIndex(tmpl[i+2 : i+2+end]); n > 0 {
				dst = appendGroup(dst, src, loc, n)
			}
			i += 2 + end
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

func (r Rule) hasNamedGroups() bool {
	for _, name := range r.Pattern.SubexpNames() {
		if name != "" {
			return true
		}
	}
	return false
}

// groupRef reads a one or two digit group number from the start of s. Two
// digits are used only when that group exists.
func groupRef(s string, groups int) (n, width int) {
	if len(s) >= 2 && isDigit(s[1]) {
		if nn := int(s[0]-'0')*10 + int(s[1]-'0'); nn >= 1 && nn <= groups {
			return nn, 2
		}
	}
	if d := int(s[0] - '0'); d >= 1 && d <= groups {
		return d, 1
	}
	return 0, 0
}

// appendGroup appends group n; a group that did not participate adds nothing.
func appendGroup(dst []byte, src string, loc []int, n int) []byte {
	if start, end := loc[2*n], loc[2*n+1]; start >= 0 {
		dst = append(dst, src[start:end]...)
	}
	return dst
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Matcher holds the ordered module-root rules.
type Matcher struct {
	rules []Rule
}

// NewMatcher returns a matcher over rules in configuration order.
func NewMatcher(rules ...Rule) *Matcher {
	return &Matcher{rules: append([]Rule(nil), rules...)}
}

// Match rewrites logical with the most specific matching rule. A rule matches
// only when applying it changes the string. The rule whose pattern source text
// is longest wins; ties keep the earlier rule.
func (m *Matcher) Match(logical string) (string, bool) {
	if m == nil {
		return "", false
	}
	var (
		best      string
		bestLen   = -1
		bestFound bool
	)
	for _, rule := range m.rules {
		rewritten := rule.Apply(logical)
		if rewritten == logical {
			continue
		}
		if n := len(rule.Pattern.String()); n > bestLen {
			best, bestLen, bestFound = rewritten, n, true
		}
	}
	return best, bestFound
}
