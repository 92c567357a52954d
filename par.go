package fiber

type parState uint8

const (
	running parState = iota
	halted
)

// par holds the children of a combinator until it is awaited.
type par struct {
	ctx      *ParamContext
	mode     ParMode
	children []Coroutine
	access   AccessSet
	state    parState
}

func (p *par) with(c UninitCoroutine) {
	if child, ok := p.ctx.construct(c, &p.access); ok {
		p.children = append(p.children, child)
		p.ctx.track(p)
	}
}

func (p *par) await() int {
	if p.state == halted {
		panic("fiber: combinator awaited while already waiting")
	}
	if len(p.children) == 0 {
		return -1
	}

	winner := -1
	reason := WaitingReason{
		Kind:     Children,
		Mode:     p.mode,
		Children: p.children,
		settle:   func(i int) { winner = i },
	}
	p.children, p.access = nil, AccessSet{}
	p.ctx.untrack(p)

	p.state = halted
	p.ctx.wait(reason)
	p.state = running
	return winner
}

func (p *par) cancel() {
	for _, c := range p.children {
		c.Cancel()
	}
	p.children, p.access = nil, AccessSet{}
	p.ctx.untrack(p)
}

// RaceGroup resolves once any of its children is done. The other children
// are dropped at that point, whatever their progress.
type RaceGroup struct{ p par }

// ParOr returns a race between c and the children added with With.
func (f *Fib) ParOr(c UninitCoroutine) *RaceGroup {
	r := &RaceGroup{p: par{ctx: f.ctx, mode: Race}}
	return r.With(c)
}

// With adds c to the race. A child that cannot be built, or whose access
// conflicts with a previous child, is silently dropped.
func (r *RaceGroup) With(c UninitCoroutine) *RaceGroup {
	r.p.with(c)
	return r
}

// Len returns the number of children in the race.
func (r *RaceGroup) Len() int { return len(r.p.children) }

// Await suspends the coroutine until one child is done. Children are
// resumed in the order they were added; Await returns the index among the
// children still in the race of the first one that completed, or -1 if
// there were none. The children are consumed: awaiting again returns
// immediately.
func (r *RaceGroup) Await() int { return r.p.await() }

// Cancel drops the children of a race which will not be awaited.
func (r *RaceGroup) Cancel() { r.p.cancel() }

// JoinGroup resolves once all of its children are done.
type JoinGroup struct{ p par }

// ParAnd returns a join of c and the children added with With.
func (f *Fib) ParAnd(c UninitCoroutine) *JoinGroup {
	j := &JoinGroup{p: par{ctx: f.ctx, mode: Join}}
	return j.With(c)
}

// With adds c to the join. A child that cannot be built, or whose access
// conflicts with a previous child, is silently dropped.
func (j *JoinGroup) With(c UninitCoroutine) *JoinGroup {
	j.p.with(c)
	return j
}

// Len returns the number of children in the join.
func (j *JoinGroup) Len() int { return len(j.p.children) }

// Await suspends the coroutine until every child is done. The children are
// consumed: awaiting again returns immediately.
func (j *JoinGroup) Await() { j.p.await() }

// Cancel drops the children of a join which will not be awaited.
func (j *JoinGroup) Cancel() { j.p.cancel() }

// Race runs cs until the first one completes and returns its index among
// the children that could be built, or -1.
func (f *Fib) Race(cs ...UninitCoroutine) int {
	r := &RaceGroup{p: par{ctx: f.ctx, mode: Race}}
	for _, c := range cs {
		r.With(c)
	}
	return r.Await()
}

// Join runs cs until all of them complete.
func (f *Fib) Join(cs ...UninitCoroutine) {
	j := &JoinGroup{p: par{ctx: f.ctx, mode: Join}}
	for _, c := range cs {
		j.With(c)
	}
	j.Await()
}
