package art

// Source of uniform random draws. *math/rand/v2.Rand satisfies it.
type Rand interface {
	// Returns a value in [0, n).
	IntN(n int) int
}

// Movement direction. The numeric values are the draw from Rand.IntN(4).
type Direction int

const (
	Right Direction = iota
	Left
	Up
	Down
)

func (d Direction) horizontal() bool {
	return d == Right || d == Left
}

type point struct {
	X, Y int
}

func (p point) move(d Direction) point {
	switch d {
	case Right:
		p.X++
	case Left:
		p.X--
	case Up:
		p.Y++
	case Down:
		p.Y--
	}
	return p
}

// Returns the side of `from` on which `to` lies. Used to find which side a path cell was entered
// from. The two points never coincide.
func sideToward(from, to point) Direction {
	switch {
	case from.X-to.X > 0:
		return Left
	case from.X-to.X < 0:
		return Right
	case from.Y-to.Y > 0:
		return Down
	default:
		return Up
	}
}

type cellKind int

const (
	kindPath cellKind = iota
	kindBody
	kindEar
	kindJuji
)

type cell struct {
	kind cellKind
	// for path cells: the side it was entered from, then the side(s) it was left through. A head
	// cell has only the entry side.
	sides  []Direction
	head   bool
	gaming bool
}

func (c *cell) has(d Direction) bool {
	for _, s := range c.sides {
		if s == d {
			return true
		}
	}
	return false
}

// Straight neck segment that a move in direction d could tunnel under.
func (c *cell) crossableBy(d Direction) bool {
	if c == nil || c.kind != kindPath || c.head || len(c.sides) != 2 {
		return false
	}
	if d.horizontal() {
		return c.has(Up) && c.has(Down)
	}
	return c.has(Left) && c.has(Right)
}

type body struct {
	pos      point
	prev     point
	retry    int
	finished bool
	gaming   bool
}

// Shared occupancy grid for all bodies of one drawing.
type Grid struct {
	Width  int
	Height int

	// occupied cells; a nil value is a cell the path has reached but not yet left
	cells map[point]*cell
	order []point
	minX  int
	maxX  int
	minY  int
	maxY  int
}

func newGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make(map[point]*cell),
	}
}

func (g *Grid) occupied(p point) bool {
	_, ok := g.cells[p]
	return ok
}

// Whether the bounding box of all occupied cells plus p stays inside the limits.
func (g *Grid) fits(p point) bool {
	if len(g.order) == 0 {
		return true
	}
	minX, maxX := min(g.minX, p.X), max(g.maxX, p.X)
	minY, maxY := min(g.minY, p.Y), max(g.maxY, p.Y)
	return maxX-minX < g.Width && maxY-minY < g.Height
}

func (g *Grid) put(p point, c *cell) {
	if !g.occupied(p) {
		if len(g.order) == 0 {
			g.minX, g.maxX, g.minY, g.maxY = p.X, p.X, p.Y, p.Y
		} else {
			g.minX, g.maxX = min(g.minX, p.X), max(g.maxX, p.X)
			g.minY, g.maxY = min(g.minY, p.Y), max(g.maxY, p.Y)
		}
		g.order = append(g.order, p)
	}
	g.cells[p] = c
}

// Number of occupied cells.
func (g *Grid) Len() int {
	return len(g.order)
}

// Span of the bounding box, in cells.
func (g *Grid) Bounds() (width, height int) {
	if len(g.order) == 0 {
		return 0, 0
	}
	return g.maxX - g.minX + 1, g.maxY - g.minY + 1
}

func (g *Grid) setup(opts Options) []*body {
	var bodies []*body
	if opts.Kerberos {
		gaming := opts.gamingAt(0)
		g.put(point{0, 0}, &cell{kind: kindBody, gaming: gaming})
		g.put(point{1, 0}, &cell{kind: kindEar})
		g.put(point{0, 1}, &cell{kind: kindJuji, gaming: gaming})
		for i, p := range []point{{-1, 1}, {0, 2}, {1, 1}} {
			g.put(p, nil)
			bodies = append(bodies, &body{
				pos:    p,
				prev:   point{0, 1},
				retry:  opts.Retry,
				gaming: opts.gamingAt(i),
			})
		}
		return bodies
	}
	for i := 0; i < opts.Bodies; i++ {
		g.put(point{2 * i, 0}, &cell{kind: kindBody, gaming: opts.gamingAt(i)})
		g.put(point{2*i + 1, 0}, &cell{kind: kindEar})
		g.put(point{2 * i, 1}, nil)
		bodies = append(bodies, &body{
			pos:    point{2 * i, 1},
			prev:   point{2 * i, 0},
			retry:  opts.Retry,
			gaming: opts.gamingAt(i),
		})
	}
	return bodies
}

// Advances one body by one turn. Returns false if the turn must be redrawn (a blocked move was
// retried).
func (g *Grid) step(bd *body, retryMax int, rnd Rand) bool {
	d := Direction(rnd.IntN(4))
	next := bd.pos.move(d)
	from := sideToward(bd.pos, bd.prev)

	if g.occupied(next) || !g.fits(next) {
		far := next.move(d)
		switch {
		case g.cells[next].crossableBy(d) && !g.occupied(far) && g.fits(far):
			if rnd.IntN(2) == 1 {
				crossing := &cell{kind: kindPath, sides: []Direction{Up, Down}, gaming: bd.gaming}
				if d.horizontal() {
					crossing.sides = []Direction{Left, Right}
				}
				g.cells[next] = crossing
			}
			next = far
		case bd.retry > 0:
			bd.retry--
			return false
		default:
			if g.cells[bd.pos] == nil {
				g.cells[bd.pos] = &cell{kind: kindPath, sides: []Direction{from}, head: true, gaming: bd.gaming}
			}
			bd.finished = true
			return true
		}
	}

	g.put(next, nil)
	cur := g.cells[bd.pos]
	if cur == nil || cur.head || cur.kind != kindPath {
		g.cells[bd.pos] = &cell{kind: kindPath, sides: []Direction{from, d}, gaming: bd.gaming}
	} else {
		// a split body leaving a cell its twin already left
		g.cells[bd.pos] = &cell{kind: kindPath, sides: []Direction{cur.sides[0], cur.sides[1], d}, gaming: bd.gaming}
	}
	bd.retry = retryMax
	bd.prev, bd.pos = bd.pos, next
	return true
}

// Runs the self-avoiding walk to completion.
func Walk(opts Options, rnd Rand) *Grid {
	opts = opts.normalized()
	g := newGrid(opts.Width, opts.Height)
	bodies := g.setup(opts)

	for {
		if opts.Split {
			n := len(bodies)
			for i := 0; i < n; i++ {
				if bodies[i].finished {
					continue
				}
				if rnd.IntN(4) == 0 {
					twin := *bodies[i]
					bodies = append(bodies, &twin)
				}
			}
		}
		for _, bd := range bodies {
			if bd.finished {
				continue
			}
			for !g.step(bd, opts.Retry, rnd) {
			}
		}
		done := true
		for _, bd := range bodies {
			if !bd.finished {
				done = false
				break
			}
		}
		if done {
			return g
		}
	}
}
