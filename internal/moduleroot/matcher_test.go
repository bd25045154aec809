package moduleroot

import "testing"

func TestMatchLongestPatternWins(t *testing.T) {
	m := NewMatcher(
		MustRule(`^a/`, "lib/a/"),
		MustRule(`^a/b/`, "lib/ab/"),
	)
	got, ok := m.Match("a/b/c")
	if !ok {
		t.Fatalf("expected a match")
	}
	if got != "lib/ab/c" {
		t.Fatalf("expected lib/ab/c, got %s", got)
	}
}

func TestMatchUsesPatternTextNotMatchSpan(t *testing.T) {
	// The first pattern matches more of the input but its source is shorter.
	m := NewMatcher(
		MustRule(`^.*/`, "x/"),
		MustRule(`^acme/p`, "vendor/acme/p"),
	)
	got, ok := m.Match("acme/pkg/deep/mod")
	if !ok || got != "vendor/acme/pkg/deep/mod" {
		t.Fatalf("expected the longer pattern source to win, got %q (%v)", got, ok)
	}
}

func TestMatchTieKeepsEarlierRule(t *testing.T) {
	m := NewMatcher(
		MustRule(`^ab`, "first"),
		MustRule(`^a.`, "second"),
	)
	if got, _ := m.Match("abc"); got != "firstc" {
		t.Fatalf("expected earlier rule on tie, got %s", got)
	}
}

func TestMatchIgnoresNoOpRewrites(t *testing.T) {
	m := NewMatcher(
		MustRule(`^lib/`, "lib/"),
		MustRule(`^zzz/`, "q/"),
	)
	if got, ok := m.Match("lib/x"); ok {
		t.Fatalf("expected no match for unchanged rewrite, got %s", got)
	}
}

func TestRuleApplyReplacesFirstMatchWithGroups(t *testing.T) {
	rule := MustRule(`@(\w+)/`, "scoped/$1/")
	if got := rule.Apply("@acme/a/@acme/b"); got != "scoped/acme/a/@acme/b" {
		t.Fatalf("unexpected rewrite %s", got)
	}
}

func TestNewRuleRejectsBadPattern(t *testing.T) {
	if _, err := NewRule(`(`, "x"); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	if _, ok := m.Match("a"); ok {
		t.Fatalf("nil matcher must not match")
	}
}

func TestRuleApplySubstitutionTemplates(t *testing.T) {
	cases := []struct {
		pattern, substitution, input, want string
	}{
		{`^@acme/(\w+)$`, "ws/$1_impl", "@acme/widget", "ws/widget_impl"},
		{`^@acme/(\w+)$`, "ws/$10", "@acme/widget", "ws/widget0"},
		{`^@acme/(\w+)$`, "ws/$2/$0", "@acme/widget", "ws/$2/$0"},
		{`^@acme/(?P<pkg>\w+)$`, "ws/$<pkg>_impl", "@acme/widget", "ws/widget_impl"},
		{`^(\w+)$`, "$<pkg>", "widget", "$<pkg>"},
		{`acme`, "[$&]", "@acme/w", "@[acme]/w"},
		{`/`, "$'|$`", "a/b", "ab|ab"},
		{`^a`, "$$1", "ab", "$1b"},
		{`^(x)?a`, "[$1]", "ab", "[]b"},
		{`^a`, "end$", "ab", "end$b"},
	}
	for _, tc := range cases {
		if got := MustRule(tc.pattern, tc.substitution).Apply(tc.input); got != tc.want {
			t.Fatalf("%q with %q on %q: expected %q, got %q", tc.pattern, tc.substitution, tc.input, tc.want, got)
		}
	}
}
