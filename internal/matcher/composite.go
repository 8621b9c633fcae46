package matcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// Composite is an and/or/not expression tree over leaf matchers. Exactly
// one of And, Or, Not, Leaf is populated per node.
type Composite struct {
	name string
	and  []Matcher
	or   []Matcher
	not  Matcher
	leaf Matcher
}

// And builds a composite requiring every branch to match. Branches are
// evaluated concurrently since each leaf matcher is CPU-bound pixel work.
func And(name string, branches ...Matcher) *Composite {
	return &Composite{name: name, and: branches}
}

// Or builds a composite requiring at least one branch to match. Branches
// are evaluated concurrently for the same reason as And.
func Or(name string, branches ...Matcher) *Composite {
	return &Composite{name: name, or: branches}
}

// Not negates a single branch.
func Not(name string, branch Matcher) *Composite {
	return &Composite{name: name, not: branch}
}

// Leaf wraps a single matcher so it can be named independently within a
// larger tree (used by the analyzer's by-name lookup).
func Leaf(name string, m Matcher) *Composite {
	return &Composite{name: name, leaf: m}
}

func (c *Composite) Name() string { return c.name }

func (c *Composite) Match(f frame.Frame) bool {
	switch {
	case c.leaf != nil:
		return c.leaf.Match(f)
	case c.not != nil:
		return !c.not.Match(f)
	case c.and != nil:
		return evalConcurrent(c.and, f, true)
	case c.or != nil:
		return evalConcurrent(c.or, f, false)
	default:
		return false
	}
}

// evalConcurrent evaluates every branch concurrently via errgroup and waits
// for all of them before combining the results (wantAll=true for and,
// false for or); it does not stop early once the outcome is decided.
func evalConcurrent(branches []Matcher, f frame.Frame, wantAll bool) bool {
	results := make([]bool, len(branches))
	g, _ := errgroup.WithContext(context.Background())
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			results[i] = branch.Match(f)
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		if wantAll && !r {
			return false
		}
		if !wantAll && r {
			return true
		}
	}
	return wantAll
}
