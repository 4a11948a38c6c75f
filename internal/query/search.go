package query

import (
	"github.com/ivoronin/tap/internal/index"
)

// Search evaluates q against every package of idx and returns all matches
// sorted by key. A nil query has no matches and does not touch the index.
func Search(idx index.Index, q Matcher) ([]Match, error) {
	if q == nil {
		return nil, nil
	}

	var results []Match
	err := idx.ForEach(func(pkg *index.Package) error {
		results = append(results, q.Match(pkg)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortMatches(results), nil
}
