package schedule

import (
	"sort"

	"github.com/dbritton/callsheet/internal/model"
)

// buildGraph runs the pairwise conflict check over every unordered pair and
// returns an adjacency map with bidirectional edges. O(n²) in the number of
// events; callers bound n by passing a single day's events.
func buildGraph(events []*model.Event) map[int64][]int64 {
	graph := make(map[int64][]int64, len(events))
	for _, e := range events {
		graph[e.ID] = nil
	}
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if Conflicts(events[i], events[j]) {
				graph[events[i].ID] = append(graph[events[i].ID], events[j].ID)
				graph[events[j].ID] = append(graph[events[j].ID], events[i].ID)
			}
		}
	}
	return graph
}

// Cluster partitions a day's events into connected components of mutually or
// transitively conflicting events, plus the conflict-free remainder. Every
// input event lands in exactly one of the two outputs. Clusters and the
// clear list are sorted by start time ascending (stable for ties).
func Cluster(events []*model.Event) (clusters [][]*model.Event, clear []*model.Event) {
	graph := buildGraph(events)
	byID := make(map[int64]*model.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	visited := make(map[int64]struct{}, len(events))
	inCluster := make(map[int64]struct{})

	for _, event := range events {
		if _, seen := visited[event.ID]; seen {
			continue
		}

		// Depth-first walk with an explicit stack; a pathological input
		// must not be able to blow the call stack.
		var component []int64
		stack := []int64{event.ID}
		visited[event.ID] = struct{}{}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, id)
			for _, neighbor := range graph[id] {
				if _, seen := visited[neighbor]; !seen {
					visited[neighbor] = struct{}{}
					stack = append(stack, neighbor)
				}
			}
		}

		// A singleton is only a cluster if it somehow kept an edge; edges
		// are bidirectional so this should not arise, but a malformed graph
		// must not produce a one-event "cluster" with no conflict.
		if len(component) == 1 && len(graph[component[0]]) == 0 {
			continue
		}

		members := make([]*model.Event, 0, len(component))
		for _, id := range component {
			members = append(members, byID[id])
			inCluster[id] = struct{}{}
		}
		sortByStart(members)
		clusters = append(clusters, members)
	}

	for _, e := range events {
		if _, ok := inCluster[e.ID]; !ok {
			clear = append(clear, e)
		}
	}
	sortByStart(clear)
	return clusters, clear
}

func sortByStart(events []*model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return ParseMinutes(events[i].StartTime) < ParseMinutes(events[j].StartTime)
	})
}
