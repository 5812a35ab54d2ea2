package warehouse

import (
	"strconv"
	"strings"

	vo "metadata-scanner/domain/core/valueobjects"
)

// ValueDelimiter separates tokens inside multi-valued metadata columns.
const ValueDelimiter = "#|!|#"

// ParseValueSet splits a delimited column into a set holding at most limit
// distinct tokens. An empty column yields an empty set.
func ParseValueSet(s string, limit int) *vo.BoundedSet[string] {
	set := vo.NewBoundedSet[string](limit)
	if s == "" {
		return set
	}
	for _, token := range strings.Split(s, ValueDelimiter) {
		if set.Full() {
			break
		}
		set.Add(token)
	}
	return set
}

// ParseValueCounts decodes "<value>_<count>" tokens. The count follows the
// last underscore, so values may contain underscores themselves. The count
// is read from the leading digits after the underscore, so "v_5abc" counts
// 5. Tokens with an empty value or no leading digits are dropped.
func ParseValueCounts(s string) []vo.ValueCount {
	if s == "" {
		return nil
	}
	var out []vo.ValueCount
	for _, token := range strings.Split(s, ValueDelimiter) {
		i := strings.LastIndexByte(token, '_')
		if i <= 0 {
			continue
		}
		count, err := leadingInt(token[i+1:])
		if err != nil {
			continue
		}
		out = append(out, vo.ValueCount{Value: token[:i], Count: count})
	}
	return out
}

// leadingInt parses an optionally signed run of decimal digits at the start
// of s, after leading whitespace, ignoring whatever follows.
func leadingInt(s string) (int64, error) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(s[:end], 10, 64)
}
