package engage

import (
	"sort"
	"strings"
)

// stopWords are never worth keeping as interests. Small fixed English set;
// keyword-ish extraction is all the interest model needs.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {},
	"that": {}, "your": {}, "you": {}, "are": {}, "our": {}, "will": {},
	"join": {}, "event": {}, "events": {}, "webinar": {}, "about": {},
	"into": {}, "how": {}, "what": {}, "when": {}, "where": {},
	"all": {}, "can": {}, "get": {}, "new": {},
}

// DeriveInterests unions the user's existing interests with keywords
// extracted from the event's name and description. Tokens are lowercased;
// stop words and tokens of two characters or fewer are discarded. The result
// is deduplicated and sorted so its string form is stable across runs.
func DeriveInterests(existing []string, eventName, eventDescription string) []string {
	set := make(map[string]struct{}, len(existing))
	for _, in := range existing {
		in = strings.ToLower(strings.TrimSpace(in))
		if in != "" {
			set[in] = struct{}{}
		}
	}

	for _, tok := range tokenize(eventName + " " + eventDescription) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		set[tok] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// JoinInterests renders the interest set in its persisted form.
func JoinInterests(interests []string) string {
	return strings.Join(interests, ",")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
