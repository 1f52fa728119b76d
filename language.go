package wikiboot

import (
	"strings"

	"golang.org/x/text/language"
)

// wildcard is the base ParseAcceptLanguage assigns to "*".
var wildcard = language.MustParseBase("mul")

// PreferredLanguages turns an Accept-Language header into an ordered
// preference list, strongest first. Tags keep their canonical casing
// (zh-Hant); negotiation lower-cases them when matching. Wildcards are
// dropped and malformed headers yield nil.
func PreferredLanguages(acceptLanguage string) []string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return nil
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == language.Und {
			continue
		}
		if base, _ := tag.Base(); base == wildcard {
			continue
		}
		value := tag.String()
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
