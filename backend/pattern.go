/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package backend

import "strings"

const patternMeta = `*?[]\`

// EscapePattern quotes glob metacharacters so s matches itself literally.
func EscapePattern(s string) string {
	if !strings.ContainsAny(s, patternMeta) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(patternMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LiteralPrefix returns the unescaped text before the first metacharacter of
// pattern and whether the rest of the pattern is exactly "*".
func LiteralPrefix(pattern string) (prefix string, onlyStar bool) {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '\\':
			if i+1 < len(pattern) {
				i++
				b.WriteByte(pattern[i])
				continue
			}
			b.WriteByte(c)
		case '*', '?', '[':
			return b.String(), pattern[i:] == "*"
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), false
}

// MatchPattern reports whether key matches a Redis glob pattern
// (*, ?, [abc], [^a-z] and backslash escapes).
func MatchPattern(pattern, key string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if MatchPattern(pattern, key[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(key) == 0 {
				return false
			}
			pattern, key = pattern[1:], key[1:]
		case '[':
			if len(key) == 0 {
				return false
			}
			end := strings.IndexByte(pattern[1:], ']')
			if end < 0 {
				return false
			}
			class := pattern[1 : end+1]
			if !matchClass(class, key[0]) {
				return false
			}
			pattern, key = pattern[end+2:], key[1:]
		case '\\':
			if len(pattern) > 1 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(key) == 0 || pattern[0] != key[0] {
				return false
			}
			pattern, key = pattern[1:], key[1:]
		}
	}
	return len(key) == 0
}

func matchClass(class string, c byte) bool {
	negate := false
	if len(class) > 0 && class[0] == '^' {
		negate = true
		class = class[1:]
	}
	matched := false
	for i := 0; i < len(class); i++ {
		lo := class[i]
		if lo == '\\' && i+1 < len(class) {
			i++
			lo = class[i]
		}
		hi := lo
		if i+2 < len(class) && class[i+1] == '-' {
			hi = class[i+2]
			i += 2
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if c >= lo && c <= hi {
			matched = true
		}
	}
	return matched != negate
}
