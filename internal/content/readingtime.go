package content

import (
	"fmt"
	"strings"
)

// wordsPerMinute は読了時間算出に使う1分あたりの語数。
const wordsPerMinute = 200

// CountWords は本文の空白区切りトークン数を返す。
func CountWords(body string) int {
	return len(strings.Fields(body))
}

// ReadingTime は本文の読了時間を "<n> min read" 形式で返す。
// n = ceil(語数/200)。空の本文でも最低1分として報告する。
func ReadingTime(body string) string {
	words := CountWords(body)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
