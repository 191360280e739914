package scanner

import (
	"strings"
)

const DefaultTrack = "engineering"

// Tracks in evaluation and presentation order.
var Tracks = []string{"finance", "engineering", "soc_auto_design", "family"}

var TrackLabels = map[string]string{
	"finance":         "Finance",
	"engineering":     "Engineering",
	"soc_auto_design": "SoC Auto Design",
	"family":          "Family",
}

type trackRule struct {
	track    string
	keywords []string
}

// Keyword heuristics are ordered data, not code: first matching rule wins.
var trackRules = []trackRule{
	{"finance", []string{"finance", "stk", "trader", "poly", "trading", "quant", "moomoo", "webull"}},
	{"engineering", []string{"daytalk", "npu", "noc", "mec", "rtl", "arm", "chip", "soc"}},
	{"soc_auto_design", []string{"auto-design", "autodesign", "openlane", "eda", "chipgen", "autoflow"}},
	{"family", []string{"family", "home", "ella", "anna"}},
}

func IsTrack(track string) bool {
	_, ok := TrackLabels[track]
	return ok
}

// Classify assigns exactly one track. A configured override prefix always
// wins (longest match, with a path-boundary check so /foo does not claim
// /foobar); otherwise the keyword rules run against path plus name.
func Classify(path, name string, overrides map[string]string) string {
	best, bestLen := "", -1
	for prefix, track := range overrides {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			if len(prefix) > bestLen {
				best, bestLen = track, len(prefix)
			}
		}
	}
	if best != "" {
		return best
	}

	key := strings.ToLower(path + " " + name)
	for _, rule := range trackRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(key, keyword) {
				return rule.track
			}
		}
	}
	return DefaultTrack
}
