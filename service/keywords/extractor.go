package keywords

import (
	"sort"
	"strings"
	"unicode"
)

const (
	defaultTopN = 10
	minTokenLen = 2
	maxTokenLen = 32
)

// 常见虚词不作为关键词
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"are": {}, "was": {}, "not": {}, "but": {}, "have": {}, "has": {},
	"you": {}, "can": {}, "will": {}, "from": {}, "when": {}, "then": {},
	"的": {}, "了": {}, "和": {}, "是": {}, "在": {}, "我": {},
	"有": {}, "个": {}, "不": {}, "也": {}, "就": {}, "都": {},
}

// Extract 词频关键词提取，纯本地计算，结果确定
// 拉丁文按词切分，中日韩文按双字切分
func Extract(text string, topN int) []string {
	if topN <= 0 {
		topN = defaultTopN
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	next := 0

	record := func(token string) {
		token = strings.ToLower(token)
		if len(token) < minTokenLen || len(token) > maxTokenLen {
			return
		}
		if _, ok := stopwords[token]; ok {
			return
		}
		if _, seen := counts[token]; !seen {
			order[token] = next
			next++
		}
		counts[token]++
	}

	var latin []rune
	var han []rune

	flushLatin := func() {
		if len(latin) > 0 {
			record(string(latin))
			latin = latin[:0]
		}
	}
	flushHan := func() {
		for i := 0; i+1 < len(han); i++ {
			record(string(han[i : i+2]))
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushLatin()
			han = append(han, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			latin = append(latin, r)
		default:
			flushLatin()
			flushHan()
		}
	}
	flushLatin()
	flushHan()

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}

	// 频次相同按首次出现顺序排序，保证结果稳定
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return order[tokens[i]] < order[tokens[j]]
	})

	if len(tokens) > topN {
		tokens = tokens[:topN]
	}
	return tokens
}
