package navigation

import "strings"

// IsValidRoute reports whether path is reachable under set.
//
// Exact pattern matches win. Otherwise patterns containing ":" segments are
// matched position by position with a strict segment-count comparison, so a
// trailing slash makes a path distinct from its slash-less pattern.
func IsValidRoute(path string, set RouteSet) bool {
	if len(set.Routes) == 0 {
		return false // fail closed
	}

	for _, entry := range set.Routes {
		if entry.PathPattern == path {
			return true
		}
	}

	segs := strings.Split(path, "/")
	for _, entry := range set.Routes {
		if !strings.Contains(entry.PathPattern, ":") {
			continue
		}
		if matchSegments(strings.Split(entry.PathPattern, "/"), segs) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, pseg := range pattern {
		if strings.HasPrefix(pseg, ":") {
			continue
		}
		if pseg != path[i] {
			return false
		}
	}
	return true
}
