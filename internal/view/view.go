// Package view derives display-ready cluster lists from a store snapshot and
// transient interaction state. Everything here is pure.
package view

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/five82/clusterboard/internal/api"
)

// SortMode selects the ordering applied by Project.
type SortMode int

const (
	SortBySize SortMode = iota
	SortByRecency
)

func (m SortMode) String() string {
	switch m {
	case SortByRecency:
		return "by-recency"
	default:
		return "by-size"
	}
}

// ParseSortMode accepts "size"/"by-size" and "recency"/"by-recency".
func ParseSortMode(value string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "size", "by-size":
		return SortBySize, nil
	case "recency", "by-recency", "recent":
		return SortByRecency, nil
	default:
		return SortBySize, fmt.Errorf("unknown sort mode %q", value)
	}
}

// State is session-local view state. The zero value shows everything sorted by
// size with nothing expanded. Methods return modified copies.
type State struct {
	Search   string
	Sort     SortMode
	expanded map[string]struct{}
}

// WithSearch returns s with a new filter string.
func (s State) WithSearch(search string) State {
	s.Search = search
	return s
}

// WithSort returns s using mode.
func (s State) WithSort(mode SortMode) State {
	s.Sort = mode
	return s
}

// CycleSort flips between the two sort modes.
func (s State) CycleSort() State {
	if s.Sort == SortBySize {
		s.Sort = SortByRecency
	} else {
		s.Sort = SortBySize
	}
	return s
}

// ToggleExpanded returns s with id's expanded flag inverted.
func (s State) ToggleExpanded(id string) State {
	next := make(map[string]struct{}, len(s.expanded)+1)
	for k := range s.expanded {
		next[k] = struct{}{}
	}
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	s.expanded = next
	return s
}

// IsExpanded reports whether id is currently expanded.
func (s State) IsExpanded(id string) bool {
	_, ok := s.expanded[id]
	return ok
}

// Expanded returns the expanded ids in sorted order.
func (s State) Expanded() []string {
	ids := make([]string, 0, len(s.expanded))
	for k := range s.expanded {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	return ids
}

// Project filters clusters by st.Search and orders them by st.Sort. The input
// slice is never modified; ties keep their original relative order.
func Project(clusters []api.Cluster, st State) []api.Cluster {
	needle := strings.ToLower(st.Search)
	out := make([]api.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if needle == "" || strings.Contains(strings.ToLower(c.RepresentativeText), needle) {
			out = append(out, c)
		}
	}

	switch st.Sort {
	case SortByRecency:
		type stamped struct {
			c  api.Cluster
			at time.Time
		}
		tmp := make([]stamped, len(out))
		for i, c := range out {
			tmp[i] = stamped{c: c, at: c.ParsedUpdatedAt()}
		}
		sort.SliceStable(tmp, func(i, j int) bool {
			return tmp[i].at.After(tmp[j].at)
		})
		for i := range tmp {
			out[i] = tmp[i].c
		}
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CommentCount > out[j].CommentCount
		})
	}
	return out
}

// Series is a chart-ready pair of parallel slices.
type Series struct {
	Labels []string
	Counts []int
}

// Distribution maps projected clusters to positional labels and member
// counts. It never reorders or drops entries.
func Distribution(clusters []api.Cluster) Series {
	s := Series{
		Labels: make([]string, len(clusters)),
		Counts: make([]int, len(clusters)),
	}
	for i, c := range clusters {
		s.Labels[i] = fmt.Sprintf("Cluster %d", i+1)
		s.Counts[i] = c.CommentCount
	}
	return s
}

// Len is the number of bars.
func (s Series) Len() int { return len(s.Counts) }

// Max returns the largest count, or 0 for an empty series.
func (s Series) Max() int {
	max := 0
	for _, c := range s.Counts {
		if c > max {
			max = c
		}
	}
	return max
}
