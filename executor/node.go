package executor

import (
	"slices"
	"time"

	"github.com/stealthrocket/fiber"
	"github.com/stealthrocket/fiber/ecs"
)

// node is a coroutine in the registry, with the children it is waiting on.
type node struct {
	id    ID // children carry the id of their root
	index int
	owner ecs.Entity
	co    fiber.Coroutine

	// wait is the reason given by the last resume; its zero value means
	// the coroutine has not run yet.
	wait     fiber.WaitingReason
	children []*node

	// scheduling state of roots
	visited  uint64
	deferred bool
	elapsed  time.Duration
	// gone is set once the node finished or was cancelled; done only
	// when it finished.
	gone bool
	done bool
}

// access returns the data reserved by n and all of its descendants.
func (n *node) access() *fiber.AccessSet {
	if len(n.children) == 0 {
		return n.co.Access()
	}
	var set fiber.AccessSet
	n.collect(&set)
	return &set
}

func (n *node) collect(set *fiber.AccessSet) {
	set.Union(n.co.Access())
	for _, c := range n.children {
		c.collect(set)
	}
}

func (n *node) cancel() {
	for _, c := range n.children {
		c.cancel()
	}
	n.children = nil
	n.co.Cancel()
}

// pass carries the state of the tick a root is being driven in.
type pass struct {
	world fiber.World
	dt    time.Duration
	root  *node
	// path holds the ancestors of the children being driven.
	path []*node
	// others is the access claimed by the roots already resumed this tick.
	others *fiber.AccessSet
	// ran is the access of the children of root resumed so far this tick.
	ran fiber.AccessSet
	// held is set when a new child had to wait for the next tick.
	held bool
}

// blocked reports whether the new child c conflicts with a coroutine which
// ran this tick or is still running: one of the other roots, or a node of
// its own tree which is not one of its ancestors. Ancestors are suspended
// while c runs.
func (p *pass) blocked(c *node) bool {
	access := c.co.Access()
	if p.others.Conflicts(access) || p.ran.Conflicts(access) {
		return true
	}
	var set fiber.AccessSet
	p.root.collectStarted(&set, p.path, c)
	return set.Conflicts(access)
}

// collectStarted adds to set the access of the live nodes of the tree which
// have run before, leaving out the nodes of path and skip.
func (n *node) collectStarted(set *fiber.AccessSet, path []*node, skip *node) {
	if n == skip || n.gone {
		return
	}
	if !n.fresh() && !slices.Contains(path, n) {
		set.Union(n.co.Access())
	}
	for _, c := range n.children {
		c.collectStarted(set, path, skip)
	}
}

// fresh reports whether n has not run yet.
func (n *node) fresh() bool { return n.wait.Kind == 0 }

// drive resumes n once it is due and reports whether it completed.
//
// A coroutine waiting on children is resumed as soon as they resolve, in
// the same pass. New children are driven right away as well, so a child
// which does not suspend completes on the tick it was created.
func (e *Executor) drive(n *node, p *pass) bool {
	for {
		if n.wait.Kind == fiber.Children {
			p.path = append(p.path, n)
			resolved := e.driveChildren(n, p)
			p.path = p.path[:len(p.path)-1]
			if !resolved {
				return false
			}
		}

		r := n.co.Resume(p.world, p.dt)
		if r.Done {
			return true
		}
		n.wait = r.Reason
		if n.wait.Kind != fiber.Children {
			return false
		}

		n.children = make([]*node, len(n.wait.Children))
		for i, c := range n.wait.Children {
			n.children[i] = &node{id: n.id, index: i, owner: n.owner, co: c}
		}
		n.wait.Children = nil
		e.log.Debug().Uint64("id", uint64(n.id)).Stringer("mode", n.wait.Mode).Int("children", len(n.children)).Msg("coroutine waiting on children")
	}
}

// driveChildren resumes the children of n in the order they were added and
// reports whether the wait of n is resolved. Finished and invalid children
// are removed; once a race resolves the remaining children are cancelled.
//
// A child which has not run yet waits for a later tick while its access
// conflicts with another root already resumed this tick, or with a node of
// its own tree outside of its ancestors which ran this tick or has not
// finished yet.
func (e *Executor) driveChildren(n *node, p *pass) bool {
	winner := -1
	pending := make([]*node, 0, len(n.children))
	for _, c := range n.children {
		if c.gone {
			// left over by a pass cut short by a panic
			if c.done && winner < 0 {
				winner = c.index
			}
			continue
		}
		if !c.co.IsValid(p.world) {
			e.log.Debug().Uint64("id", uint64(n.id)).Int("child", c.index).Msg("child invalid, cancelling")
			c.cancel()
			c.gone = true
			continue
		}
		if c.fresh() && p.blocked(c) {
			p.held = true
			pending = append(pending, c)
			continue
		}
		done := e.drive(c, p)
		p.ran.Union(c.co.Access())
		if done {
			c.gone, c.done = true, true
			if winner < 0 {
				winner = c.index
			}
			continue
		}
		pending = append(pending, c)
	}
	n.children = pending

	switch {
	case n.wait.Mode == fiber.Race && winner >= 0:
		for _, c := range n.children {
			c.cancel()
		}
		n.children = nil
	case len(n.children) > 0:
		return false
	}

	wait := n.wait
	n.wait = fiber.WaitingReason{}
	wait.Settle(winner)
	return true
}
