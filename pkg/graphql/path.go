package graphql

import "fmt"

// Path locates a value in a response tree. Elements are field response
// names (string) or list indexes (int).
type Path []PathElement

type PathElement any

func (p Path) String() string {
	result := ""
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				result += "."
			}
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

// Child returns a new path extended by elem without sharing backing storage.
func (p Path) Child(elem PathElement) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = elem
	return next
}

// Join returns base followed by p.
func (p Path) Join(base Path) Path {
	out := make(Path, 0, len(base)+len(p))
	out = append(out, base...)
	out = append(out, p...)
	return out
}
