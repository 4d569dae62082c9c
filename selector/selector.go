// Package selector reduces a submission history to the latest accepted
// submission per (contest, problem, language family).
package selector

import (
	"sort"

	"atcoder-archiver/lang"
	"atcoder-archiver/problems"
)

// Key identifies one output artifact: a contest, a problem, and a
// normalized language family.
type Key struct {
	ContestID string
	ProblemID string
	Language  string
}

// Select filters the history to accepted submissions and keeps, for each
// key, the one with the highest (EpochSecond, ID). Later submission IDs
// are monotonically later, so the ID breaks timestamp ties. Pure: no
// I/O, deterministic output for a given input.
func Select(submissions []problems.Submission) map[Key]problems.Submission {
	selected := make(map[Key]problems.Submission)

	for _, sub := range submissions {
		if !sub.IsAccepted() {
			continue
		}

		key := Key{
			ContestID: sub.ContestID,
			ProblemID: sub.ProblemID,
			Language:  lang.Normalize(sub.Language),
		}

		best, ok := selected[key]
		if !ok || newer(sub, best) {
			selected[key] = sub
		}
	}

	return selected
}

// SortedKeys returns the selection keys in a stable order, so callers
// that iterate the selection produce deterministic logs and file writes.
func SortedKeys(selected map[Key]problems.Submission) []Key {
	keys := make([]Key, 0, len(selected))
	for key := range selected {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ContestID != b.ContestID {
			return a.ContestID < b.ContestID
		}
		if a.ProblemID != b.ProblemID {
			return a.ProblemID < b.ProblemID
		}
		return a.Language < b.Language
	})
	return keys
}

func newer(a, b problems.Submission) bool {
	if a.EpochSecond != b.EpochSecond {
		return a.EpochSecond > b.EpochSecond
	}
	return a.ID > b.ID
}
