package core

import (
	"cmp"
	"slices"
)

// NoWinner is reported when a runoff round received no ballots.
const NoWinner = "TBD"

// TopN ranks candidates by how many ballots selected them and returns the
// first n. A candidate counts at most once per ballot. Equal counts keep the
// order in which candidates were first met while scanning ballots in order.
func TopN(ballots [][]string, n int) []string {
	counts := make(map[string]int)
	var discovered []string
	for _, ballot := range ballots {
		inBallot := make(map[string]struct{}, len(ballot))
		for _, c := range ballot {
			if _, dup := inBallot[c]; dup {
				continue
			}
			inBallot[c] = struct{}{}
			if _, ok := counts[c]; !ok {
				discovered = append(discovered, c)
			}
			counts[c]++
		}
	}

	slices.SortStableFunc(discovered, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	if n >= 0 && len(discovered) > n {
		discovered = discovered[:n]
	}
	return discovered
}

// Winner returns the single top candidate, or NoWinner.
func Winner(ballots [][]string) string {
	top := TopN(ballots, 1)
	if len(top) == 0 {
		return NoWinner
	}
	return top[0]
}
