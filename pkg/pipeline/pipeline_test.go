package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipeline_AppliesInOrder(t *testing.T) {
	var order []string
	step := func(name string, f func(int) int) Transformer[int] {
		return func(v int) int {
			order = append(order, name)
			return f(v)
		}
	}

	p := New(
		step("double", func(v int) int { return v * 2 }),
		step("inc", func(v int) int { return v + 1 }),
	).Then(step("square", func(v int) int { return v * v }))

	assert.Equal(t, 49, p.Apply(3))
	assert.Equal(t, []string{"double", "inc", "square"}, order)
	assert.Equal(t, 3, p.Len())
}

func TestPipeline_Empty(t *testing.T) {
	var p Pipeline[string]
	assert.Equal(t, "unchanged", p.Apply("unchanged"))
}

func TestPipeline_ThenDoesNotAlias(t *testing.T) {
	base := New[int](func(v int) int { return v + 1 })
	a := base.Then(func(v int) int { return v * 10 })
	b := base.Then(func(v int) int { return v - 10 })

	assert.Equal(t, 1, base.Apply(0))
	assert.Equal(t, 10, a.Apply(0))
	assert.Equal(t, -9, b.Apply(0))
}

func TestWhen(t *testing.T) {
	negate := When(func(v int) bool { return v > 0 }, func(v int) int { return -v })

	assert.Equal(t, -4, negate(4))
	assert.Equal(t, -4, negate(-4))
}

func TestReduce(t *testing.T) {
	got := Reduce([]string{"a", "b", "c"}, "", func(acc string, s string) string {
		return acc + s
	})
	assert.Equal(t, "abc", got)

	assert.Equal(t, 7, Reduce[int](nil, 7, func(acc, v int) int { return acc + v }))
}
