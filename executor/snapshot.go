package executor

import (
	"time"

	"github.com/stealthrocket/fiber"
	"github.com/stealthrocket/fiber/ecs"
)

// Info describes the state of a coroutine at the time of a snapshot.
type Info struct {
	ID    ID
	Owner ecs.Entity
	// Index is the position of a child among its siblings; zero for roots.
	Index int
	// Wait is zero for a coroutine which has not run yet.
	Wait      fiber.Wait
	Remaining time.Duration
	Mode      fiber.ParMode
	Access    []fiber.Access
	Children  []Info
}

// Snapshot describes every registered coroutine and its children, in
// registry order.
func (e *Executor) Snapshot() []Info {
	infos := make([]Info, len(e.roots))
	for i, n := range e.roots {
		infos[i] = n.info()
	}
	return infos
}

func (n *node) info() Info {
	info := Info{
		ID:     n.id,
		Owner:  n.owner,
		Index:  n.index,
		Wait:   n.wait.Kind,
		Access: n.co.Access().Entries(),
	}
	switch n.wait.Kind {
	case fiber.Duration:
		info.Remaining = n.wait.Remaining
	case fiber.Children:
		info.Mode = n.wait.Mode
	}
	if len(n.children) > 0 {
		info.Children = make([]Info, len(n.children))
		for i, c := range n.children {
			info.Children[i] = c.info()
		}
	}
	return info
}
