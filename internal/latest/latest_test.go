package latest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_LastIssuedWins(t *testing.T) {
	tr := New()

	a := tr.Issue("student")
	b := tr.Issue("student")

	assert.False(t, tr.IsCurrent("student", a))
	assert.True(t, tr.IsCurrent("student", b))
}

func TestTracker_SlotsAreIndependent(t *testing.T) {
	tr := New()

	s := tr.Issue("student")
	d := tr.Issue("department")

	assert.True(t, tr.IsCurrent("student", s))
	assert.True(t, tr.IsCurrent("department", d))
}

func TestTracker_Invalidate(t *testing.T) {
	tr := New()

	tok := tr.Issue("batch")
	tr.Invalidate("batch")

	assert.False(t, tr.IsCurrent("batch", tok))
}

func TestTracker_Commit(t *testing.T) {
	tr := New()
	old := tr.Issue("year")
	cur := tr.Issue("year")

	ran := false
	assert.False(t, tr.Commit("year", old, func() { ran = true }))
	assert.False(t, ran)

	assert.True(t, tr.Commit("year", cur, func() { ran = true }))
	assert.True(t, ran)
}

func TestTracker_ConcurrentIssue(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	tokens := make([]Token, 50)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = tr.Issue("student")
		}(i)
	}
	wg.Wait()

	current := 0
	for _, tok := range tokens {
		if tr.IsCurrent("student", tok) {
			current++
		}
	}
	assert.Equal(t, 1, current)
}
