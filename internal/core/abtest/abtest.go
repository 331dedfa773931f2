// Package abtest groups posts that share a test id and picks a winner.
package abtest

import "xpilot/internal/core/post"

type Group struct {
	TestID      string       `json:"test_id"`
	Posts       []*post.Post `json:"posts"`
	WinnerIndex int          `json:"winner_index"`
}

// GroupByTestID groups posts by ABTestID in first-occurrence order. Posts
// without a test id are skipped. The winner is the post with the most
// impressions; ties go to the earliest post in the group.
func GroupByTestID(posts []*post.Post) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, p := range posts {
		if p == nil || p.ABTestID == nil || *p.ABTestID == "" {
			continue
		}
		key := *p.ABTestID
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{TestID: key})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}

	for i := range groups {
		groups[i].WinnerIndex = winner(groups[i].Posts)
	}
	return groups
}

func winner(posts []*post.Post) int {
	best := 0
	var bestCount int64 = -1
	for i, p := range posts {
		c := p.Impressions()
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	return best
}
