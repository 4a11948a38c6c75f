// Package version implements dpkg version ordering.
package version

import (
	"strconv"
	"strings"
	"unicode"
)

// Compare returns -1, 0, or 1 based on comparing a vs b using dpkg rules:
// epoch first, then upstream version, then Debian revision.
func Compare(a, b string) int {
	e1, u1, d1 := split(a)
	e2, u2, d2 := split(b)

	if r := comparePart(e1, e2); r != 0 {
		return r
	}
	if r := comparePart(u1, u2); r != 0 {
		return r
	}
	return comparePart(d1, d2)
}

// Satisfies reports whether ver fulfils the relation rel against want.
// An empty relation always matches. The legacy "<" and ">" relations
// mean "<=" and ">=".
func Satisfies(ver, rel, want string) bool {
	if rel == "" {
		return true
	}
	c := Compare(ver, want)
	switch rel {
	case "<<":
		return c < 0
	case "<=", "<":
		return c <= 0
	case "=":
		return c == 0
	case ">=", ">":
		return c >= 0
	case ">>":
		return c > 0
	}
	return false
}

// split breaks a full version into epoch, upstream and revision (each possibly empty).
func split(ver string) (epoch, upstream, revision string) {
	if i := strings.LastIndex(ver, "-"); i != -1 {
		revision, ver = ver[i+1:], ver[:i]
	}
	if i := strings.Index(ver, ":"); i != -1 {
		epoch, ver = ver[:i], ver[i+1:]
	}
	return epoch, ver, revision
}

// compareLexical compares non-digit runs: '~' sorts before everything,
// even the end of the string, and letters sort before non-letters.
func compareLexical(s1, s2 string) int {
	for i := 0; ; i++ {
		if i == len(s1) && i == len(s2) {
			return 0
		}
		if i == len(s2) {
			if s1[i] == '~' {
				return -1
			}
			return 1
		}
		if i == len(s1) {
			if s2[i] == '~' {
				return 1
			}
			return -1
		}
		if s1[i] == s2[i] {
			continue
		}
		if s1[i] == '~' {
			return -1
		}
		if s2[i] == '~' {
			return 1
		}
		l1, l2 := unicode.IsLetter(rune(s1[i])), unicode.IsLetter(rune(s2[i]))
		if l1 && !l2 {
			return -1
		}
		if !l1 && l2 {
			return 1
		}
		if s1[i] < s2[i] {
			return -1
		}
		return 1
	}
}

// comparePart alternates between non-digit and digit runs until a difference
// is found. Empty digit runs count as zero.
func comparePart(p1, p2 string) int {
	i1, i2 := 0, 0
	for {
		j1, j2 := i1, i2
		for j1 < len(p1) && !isDigit(p1[j1]) {
			j1++
		}
		for j2 < len(p2) && !isDigit(p2[j2]) {
			j2++
		}
		if r := compareLexical(p1[i1:j1], p2[i2:j2]); r != 0 {
			return r
		}
		i1, i2 = j1, j2

		for j1 < len(p1) && isDigit(p1[j1]) {
			j1++
		}
		for j2 < len(p2) && isDigit(p2[j2]) {
			j2++
		}
		n1, _ := strconv.Atoi(p1[i1:j1])
		n2, _ := strconv.Atoi(p2[i2:j2])
		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
		i1, i2 = j1, j2

		if i1 == len(p1) && i2 == len(p2) {
			return 0
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
