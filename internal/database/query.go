package database

import (
	"strconv"
	"strings"
)

// CountParams returns the number of bind slots in query for engines that use
// ? placeholders. Anonymous ? takes one more than the largest number assigned
// so far and ?NNN names slot NNN, so the count is the largest slot number.
// Placeholders inside string literals, quoted identifiers and comments are
// ignored.
func CountParams(query string) int {
	largest := 0
	n := len(query)

	for i := 0; i < n; i++ {
		switch ch := query[i]; ch {
		case '\'', '"', '`':
			i = skipQuoted(query, i, ch)
		case '[':
			if j := strings.IndexByte(query[i+1:], ']'); j >= 0 {
				i += j + 1
			} else {
				i = n
			}
		case '-':
			if i+1 < n && query[i+1] == '-' {
				if j := strings.IndexByte(query[i:], '\n'); j >= 0 {
					i += j
				} else {
					i = n
				}
			}
		case '/':
			if i+1 < n && query[i+1] == '*' {
				if j := strings.Index(query[i+2:], "*/"); j >= 0 {
					i += j + 3
				} else {
					i = n
				}
			}
		case '?':
			j := i + 1
			for j < n && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j == i+1 {
				largest++
				continue
			}
			if num, err := strconv.Atoi(query[i+1 : j]); err == nil && num > largest {
				largest = num
			}
			i = j - 1
		}
	}
	return largest
}

// skipQuoted returns the index of the quote closing the literal that opens
// at start. A doubled quote is an escaped quote.
func skipQuoted(s string, start int, quote byte) int {
	for j := start + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j
	}
	return len(s)
}

// QuoteIdent returns name as an ANSI double-quoted identifier, doubling any
// embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
