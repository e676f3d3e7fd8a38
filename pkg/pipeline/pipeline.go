// Package pipeline composes ordered, pure state transformations.
//
// A Pipeline applies its stages strictly in the order they were added; each
// stage receives the value the previous stage returned. Stages must not
// retain or mutate their input.
package pipeline

// Transformer is one pure step over a state value.
type Transformer[T any] func(T) T

// Pipeline is an ordered list of transformers. The zero value is an empty
// pipeline that returns its input unchanged.
type Pipeline[T any] struct {
	stages []Transformer[T]
}

// New creates a pipeline from stages, in order.
func New[T any](stages ...Transformer[T]) Pipeline[T] {
	return Pipeline[T]{stages: append([]Transformer[T](nil), stages...)}
}

// Then returns a new pipeline with stage appended. The receiver is not
// changed.
func (p Pipeline[T]) Then(stage Transformer[T]) Pipeline[T] {
	stages := make([]Transformer[T], len(p.stages), len(p.stages)+1)
	copy(stages, p.stages)
	return Pipeline[T]{stages: append(stages, stage)}
}

// When wraps stage so it only runs when cond holds for the current value.
func When[T any](cond func(T) bool, stage Transformer[T]) Transformer[T] {
	return func(v T) T {
		if !cond(v) {
			return v
		}
		return stage(v)
	}
}

// Len returns the number of stages.
func (p Pipeline[T]) Len() int {
	return len(p.stages)
}

// Apply folds the stages over initial.
func (p Pipeline[T]) Apply(initial T) T {
	acc := initial
	for _, stage := range p.stages {
		acc = stage(acc)
	}
	return acc
}

// Reduce folds items into acc in order. It is the iterative form of a
// head-first recursive list reduction.
func Reduce[E, T any](items []E, acc T, step func(T, E) T) T {
	for _, item := range items {
		acc = step(acc, item)
	}
	return acc
}
