package keywords

import "unicode"

const wordsPerMinute = 200

// ReadingTimeMinutes 估算阅读时长（分钟），按每分钟200词计
// 拉丁文按词计数，中日韩文按字计数
func ReadingTimeMinutes(text string) int {
	words := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			words++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				words++
				inWord = true
			}
		default:
			inWord = false
		}
	}

	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
