package bot

import "regexp"

// Rule is one trigger pattern. Rules are evaluated in order and the first
// match wins.
type Rule struct {
	Name string

	// Pattern is searched in the message body. Anchor it with ^ to match
	// only at the start. Matching is case sensitive.
	Pattern *regexp.Regexp

	// NounGroup names the capture group holding the optional noun.
	NounGroup string
}

// DefaultRules returns the built-in triggers:
//
//   - question: "a <noun>?" or "an <noun>?"
//   - command:  "!perryfy" with an optional noun
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "question",
			Pattern:   regexp.MustCompile(`^an? (?P<noun>.+)\?`),
			NounGroup: "noun",
		},
		{
			Name:      "command",
			Pattern:   regexp.MustCompile(`^!perryfy ?(?P<noun>.*)`),
			NounGroup: "noun",
		},
	}
}

// Match evaluates rules against body. It reports whether any rule matched,
// which one, and the captured noun. An empty noun means none was given.
func Match(rules []Rule, body string) (rule *Rule, noun string, ok bool) {
	for i := range rules {
		r := &rules[i]
		m := r.Pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if idx := r.Pattern.SubexpIndex(r.NounGroup); idx >= 0 {
			noun = m[idx]
		}
		return r, noun, true
	}
	return nil, "", false
}

// OutputName returns the file name for a composed image: "perry.png" when
// noun is empty, otherwise "perry-the-<noun>.png".
func OutputName(noun string) string {
	if noun == "" {
		return "perry.png"
	}
	return "perry-the-" + noun + ".png"
}
