// Package textmine is the heuristic fallback used when a chat response
// carries no structured frontend actions. It is pure text processing with no
// network or panel dependencies.
//
// Destination pattern priority, highest first:
//  1. explicit destination marker (目的地) + separator + token
//  2. going-to marker (想去 / 打算去 / 要去 / 去) + token
//  3. first standalone run of 2-6 CJK ideographs
//
// Tokens are 2-20 characters from the class [Han, \w, middle dot, hyphen].
// Common travel filler suffixes (旅游, 看看, ...) are trimmed from captured
// tokens before they are accepted.
package textmine

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

const tokenClass = `[\p{Han}\w·\-]`

var (
	reDestMarker = regexp.MustCompile(`目的地\s*[:：=\-]?\s*(` + tokenClass + `{2,20})`)
	reGoingTo    = regexp.MustCompile(`(?:想去|打算去|要去|准备去|去)(` + tokenClass + `{2,20})`)
	reHanRun     = regexp.MustCompile(`\p{Han}+`)
)

// Filler words that ride along after a place name in casual phrasing.
// Longest first so 游玩 is stripped before 玩.
var fillerSuffixes = []string{
	"怎么样", "好玩吗", "游玩", "旅游", "旅行", "之旅", "攻略", "看看", "转转", "逛逛", "玩",
}

// CollectStrings walks a raw JSON document in document order and returns
// every string value (object keys and non-string scalars are skipped).
func CollectStrings(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	type frame struct {
		isObject  bool
		expectKey bool
	}
	var stack []frame
	var out []string

	finishValue := func() {
		if len(stack) > 0 && stack[len(stack)-1].isObject {
			stack[len(stack)-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{isObject: true, expectKey: true})
			case '[':
				stack = append(stack, frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				finishValue()
			}
		case string:
			if len(stack) > 0 && stack[len(stack)-1].isObject && stack[len(stack)-1].expectKey {
				stack[len(stack)-1].expectKey = false
				continue
			}
			out = append(out, v)
			finishValue()
		default:
			// numbers, booleans and nulls are not mined
			finishValue()
		}
	}
}

// JoinStrings renders the collected strings as one newline-separated text.
func JoinStrings(raw []byte) string {
	return strings.Join(CollectStrings(raw), "\n")
}

// ExtractDestination returns the destination mentioned in the text, or ""
// when none of the three patterns matches.
func ExtractDestination(text string) string {
	if text == "" {
		return ""
	}
	// Normalize full-width separators (：→ :) so one separator class covers
	// both widths; Han ideographs are unaffected.
	text = width.Narrow.String(text)

	for _, re := range []*regexp.Regexp{reDestMarker, reGoingTo} {
		if m := re.FindStringSubmatch(text); m != nil {
			if tok := trimFiller(m[1]); tok != "" {
				return tok
			}
		}
	}

	for _, run := range reHanRun.FindAllString(text, -1) {
		if n := utf8.RuneCountInString(run); n >= 2 && n <= 6 {
			return run
		}
	}
	return ""
}

// ExtractTopKeyword frequency-ranks standalone CJK runs of 2-6 ideographs
// and returns the most frequent one, ties broken by first appearance.
func ExtractTopKeyword(text string) string {
	counts := make(map[string]int)
	var order []string
	for _, run := range reHanRun.FindAllString(text, -1) {
		if n := utf8.RuneCountInString(run); n < 2 || n > 6 {
			continue
		}
		if counts[run] == 0 {
			order = append(order, run)
		}
		counts[run]++
	}

	best := ""
	for _, term := range order {
		if best == "" || counts[term] > counts[best] {
			best = term
		}
	}
	return best
}

// ExtractSearchKey produces the key for the secondary video search:
// destination first, frequency-ranked keyword second, "" when the text has
// nothing minable.
func ExtractSearchKey(text string) string {
	if dest := ExtractDestination(text); dest != "" {
		return dest
	}
	return ExtractTopKeyword(text)
}

func trimFiller(token string) string {
	for changed := true; changed; {
		changed = false
		for _, suffix := range fillerSuffixes {
			if strings.HasSuffix(token, suffix) && token != suffix {
				token = strings.TrimSuffix(token, suffix)
				changed = true
			}
		}
	}
	if utf8.RuneCountInString(token) < 2 {
		return ""
	}
	return token
}
