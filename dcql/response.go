package dcql

import "github.com/kouzoh/credential-matcher-core/catalog"

// Match pairs a credential with the specific claims that satisfied one
// credential query (or one mdoc request), in the order they were declared.
type Match struct {
	Credential *catalog.Credential
	Claims     []*catalog.Claim
}

// Member is one element of a CredentialSetOption: the set of matches
// produced for a single credential-query id within that option.
type Member struct {
	Matches []Match
}

// Option is one alternative bundle within a ResponseCredentialSet, carrying
// one Member per credential-query id the option named.
type Option struct {
	Members []Member
}

// ResponseCredentialSet is the evaluated form of a CredentialSetQuery (or,
// when the query had no credential_sets, a synthetic one-per-query set).
type ResponseCredentialSet struct {
	Optional bool
	Options  []Option
}

// ConsolidateSingleMemberOptions collapses every Option with exactly one
// Member into a single synthesized Option whose sole Member's Matches is
// the concatenation of all such options' Matches - this is what lets
// "pick any one of N interchangeable single-credential options" collapse
// to one combination instead of N, while genuinely multi-member options
// (from a credential_sets option naming several credential-query ids) are
// preserved as-is.
func (rs ResponseCredentialSet) ConsolidateSingleMemberOptions() ResponseCredentialSet {
	var nonSingle []Option
	var singleMatches []Match
	numSingle := 0
	for _, opt := range rs.Options {
		if len(opt.Members) == 1 {
			singleMatches = append(singleMatches, opt.Members[0].Matches...)
			numSingle++
		} else {
			nonSingle = append(nonSingle, opt)
		}
	}
	if numSingle <= 1 {
		return rs
	}
	consolidated := Option{Members: []Member{{Matches: singleMatches}}}
	newOptions := append([]Option{consolidated}, nonSingle...)
	return ResponseCredentialSet{Optional: rs.Optional, Options: newOptions}
}

// Response is the fully evaluated DCQL query: one ResponseCredentialSet per
// declared (or synthetic) credential set, in declaration order.
type Response struct {
	CredentialSets []ResponseCredentialSet
}

// ConsolidateCredentialSets applies ConsolidateSingleMemberOptions to every
// credential set.
func (r Response) ConsolidateCredentialSets() []ResponseCredentialSet {
	out := make([]ResponseCredentialSet, len(r.CredentialSets))
	for i, cs := range r.CredentialSets {
		out[i] = cs.ConsolidateSingleMemberOptions()
	}
	return out
}

// CombinationElement carries one or more interchangeable matches for a
// single slot of a Combination; multiple matches mean the user chooses
// between interchangeable credentials for that slot.
type CombinationElement struct {
	Matches []Match
}

// Combination is one concrete, orderable picker entry-set: a numbered,
// ordered list of elements that together satisfy the evaluated query.
type Combination struct {
	Number   int
	Elements []CombinationElement
}

// Combinations enumerates every valid combination of credentials/claims
// satisfying r, by first consolidating single-member options within each
// credential set, then exploding the Cartesian product of which option (or,
// for optional sets, "no option") is chosen per set.
func (r Response) Combinations() []Combination {
	consolidated := r.ConsolidateCredentialSets()

	maxPaths := make([]int, len(consolidated))
	for i, cs := range consolidated {
		maxPaths[i] = len(cs.Options)
		if cs.Optional {
			maxPaths[i]++
		}
	}

	paths := generateAllPaths(maxPaths)

	combinations := make([]Combination, 0, len(paths))
	for number, path := range paths {
		var elements []CombinationElement
		for setIdx, cs := range consolidated {
			omit := path[setIdx] == len(cs.Options)
			if omit {
				continue
			}
			option := cs.Options[path[setIdx]]
			for _, member := range option.Members {
				elements = append(elements, CombinationElement{Matches: member.Matches})
			}
		}
		combinations = append(combinations, Combination{Number: number, Elements: elements})
	}
	return combinations
}

// generateAllPaths returns the Cartesian product of [0, maxPath[i]) for
// every index i, as one slice per combination. An empty maxPath yields a
// single empty path (the "no credential sets at all" degenerate case).
func generateAllPaths(maxPath []int) [][]int {
	if len(maxPath) == 0 {
		return [][]int{{}}
	}
	var all [][]int
	current := make([]int, len(maxPath))
	var generate func(index int)
	generate = func(index int) {
		if index == len(maxPath) {
			path := make([]int, len(current))
			copy(path, current)
			all = append(all, path)
			return
		}
		for v := 0; v < maxPath[index]; v++ {
			current[index] = v
			generate(index + 1)
		}
	}
	generate(0)
	return all
}
