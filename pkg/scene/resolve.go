package scene

import (
	"errors"
	"fmt"
	"sort"
)

// errNotReady reports that an entry references a name in its own namespace that has not been built yet
var errNotReady = errors.New("dependency not built yet")

// ResolveError reports an entry that could not be built after a full pass without progress,
// either because it references a name that never resolves or because it is part of a cycle
type ResolveError struct {
	Kind string // "texture", "material" or "object"
	Name string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s %s is impossible to construct", e.Kind, e.Name)
}

// MissingReferenceError reports a reference into an already resolved namespace that does not exist
type MissingReferenceError struct {
	Kind string
	Name string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Kind, e.Name)
}

// resolve builds every entry of one namespace. Entries are attempted in name order; an entry
// whose build returns errNotReady is retried on the next pass. A pass that builds nothing fails
// with a ResolveError naming the first stuck entry.
func resolve[D, T any](kind string, entries map[string]D, build func(entry D, built map[string]T) (T, error)) (map[string]T, error) {
	queue := make([]string, 0, len(entries))
	for name := range entries {
		queue = append(queue, name)
	}
	sort.Strings(queue)

	built := make(map[string]T, len(entries))
	for len(queue) > 0 {
		var pending []string
		for _, name := range queue {
			value, err := build(entries[name], built)
			if errors.Is(err, errNotReady) {
				pending = append(pending, name)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", kind, name, err)
			}
			built[name] = value
		}
		if len(pending) == len(queue) {
			return nil, &ResolveError{Kind: kind, Name: pending[0]}
		}
		queue = pending
	}
	return built, nil
}

// ready looks up same-namespace dependencies, reporting errNotReady if any is missing
func ready[T any](built map[string]T, names ...string) ([]T, error) {
	values := make([]T, len(names))
	for i, name := range names {
		value, ok := built[name]
		if !ok {
			return nil, errNotReady
		}
		values[i] = value
	}
	return values, nil
}

// lookup finds a reference into an earlier namespace
func lookup[T any](kind string, built map[string]T, name string) (T, error) {
	value, ok := built[name]
	if !ok {
		return value, &MissingReferenceError{Kind: kind, Name: name}
	}
	return value, nil
}
