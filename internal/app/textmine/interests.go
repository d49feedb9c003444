package textmine

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Interest lexicon mirrored from the planning agent: tag -> trigger words.
var interestLexicon = []struct {
	tag      string
	triggers []string
}{
	{"美食", []string{"美食", "吃", "餐厅", "小吃", "夜市"}},
	{"购物", []string{"购物", "逛街", "购买", "商场"}},
	{"景点", []string{"景点", "景观", "游览", "参观", "打卡"}},
	{"文化", []string{"文化", "博物馆", "历史", "古迹"}},
	{"户外", []string{"户外", "爬山", "登山", "自然", "徒步"}},
}

var (
	interestMatcher ahocorasick.AhoCorasick
	triggerTags     []string
)

func init() {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchOnlyWholeWords: false,
		MatchKind:           ahocorasick.LeftMostLongestMatch,
		DFA:                 true,
	})
	var patterns []string
	for _, entry := range interestLexicon {
		for _, trigger := range entry.triggers {
			patterns = append(patterns, trigger)
			triggerTags = append(triggerTags, entry.tag)
		}
	}
	interestMatcher = builder.Build(patterns)
}

// ExtractInterests tags the interests mentioned in free text, deduplicated,
// in lexicon order.
func ExtractInterests(text string) []string {
	if text == "" {
		return nil
	}

	hit := make(map[string]bool)
	for _, match := range interestMatcher.FindAll(text) {
		hit[triggerTags[match.Pattern()]] = true
	}

	var tags []string
	for _, entry := range interestLexicon {
		if hit[entry.tag] {
			tags = append(tags, entry.tag)
		}
	}
	return tags
}
