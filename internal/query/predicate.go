package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRegexp is returned for a "/re/" argument that does not compile.
var ErrInvalidRegexp = errors.New("invalid regular expression")

// Predicate tests a single string.
type Predicate interface {
	Test(s string) bool
	String() string
}

type contains struct {
	search string
}

// Contains is true for strings containing s. An empty s matches everything.
func Contains(s string) Predicate {
	return contains{search: s}
}

func (p contains) Test(s string) bool { return strings.Contains(s, p.search) }
func (p contains) String() string     { return fmt.Sprintf("contains %q", p.search) }

type containsFold struct {
	search string
}

// ContainsFold is the case-insensitive variant of Contains.
func ContainsFold(s string) Predicate {
	return containsFold{search: strings.ToLower(s)}
}

func (p containsFold) Test(s string) bool { return strings.Contains(strings.ToLower(s), p.search) }
func (p containsFold) String() string     { return fmt.Sprintf("contains-fold %q", p.search) }

type containsRegexp struct {
	re *regexp.Regexp
}

// ContainsRegexp is true for strings in which re finds a match.
func ContainsRegexp(re *regexp.Regexp) Predicate {
	return containsRegexp{re: re}
}

// CompileRegexp compiles pattern into a ContainsRegexp predicate.
func CompileRegexp(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRegexp, pattern, err)
	}
	return ContainsRegexp(re), nil
}

func (p containsRegexp) Test(s string) bool { return p.re.MatchString(s) }
func (p containsRegexp) String() string     { return fmt.Sprintf("regexp %q", p.re.String()) }
