// Package match combines independent matching steps into a precedence chain
// where the first step that yields candidates wins.
package match

// Step narrows a candidate list. An empty result means the step did not match.
type Step[T any] struct {
	Name string
	Run  func([]T) []T
}

// FirstNonEmpty runs the steps in order against the same candidates and
// returns the output of the first non-empty step along with its name.
// Results of different steps are never merged.
func FirstNonEmpty[T any](candidates []T, steps ...Step[T]) ([]T, string) {
	for _, step := range steps {
		if step.Run == nil {
			continue
		}
		if out := step.Run(candidates); len(out) > 0 {
			return out, step.Name
		}
	}
	return nil, ""
}

// First is FirstNonEmpty reduced to the first matching candidate.
func First[T any](candidates []T, steps ...Step[T]) (T, string, bool) {
	out, name := FirstNonEmpty(candidates, steps...)
	if len(out) == 0 {
		var zero T
		return zero, "", false
	}
	return out[0], name, true
}

// Filter keeps the candidates accepted by pred, preserving input order.
func Filter[T any](candidates []T, pred func(T) bool) []T {
	var out []T
	for _, c := range candidates {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// Prefer moves the candidates accepted by pred ahead of the rest. Relative
// order inside both groups is preserved.
func Prefer[T any](candidates []T, pred func(T) bool) []T {
	if len(candidates) == 0 {
		return candidates
	}
	out := make([]T, 0, len(candidates))
	var rest []T
	for _, c := range candidates {
		if pred(c) {
			out = append(out, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(out, rest...)
}

// Where builds a step from a predicate.
func Where[T any](name string, pred func(T) bool) Step[T] {
	return Step[T]{Name: name, Run: func(c []T) []T { return Filter(c, pred) }}
}

// Then chains a post-processing function, such as Prefer, onto a step.
func (s Step[T]) Then(fn func([]T) []T) Step[T] {
	run := s.Run
	return Step[T]{Name: s.Name, Run: func(c []T) []T {
		out := run(c)
		if len(out) == 0 {
			return out
		}
		return fn(out)
	}}
}
