package fetch

import "sync"

// nextCursor computes the rotation position for the next fetch round given
// which adapter was tried first this round. The advance depends only on the
// starting position, not on which adapter eventually succeeded, so load
// spreads evenly over time regardless of success pattern.
func nextCursor(triedFirst, n int) int {
	if n <= 1 {
		return 0
	}

	return (triedFirst + 1) % n
}

// rotationCursor tracks which adapter the next fetch round starts with.
type rotationCursor struct {
	mu  sync.Mutex
	pos int
}

// begin returns the starting position for this round and advances the
// cursor for the next one.
func (c *rotationCursor) begin(n int) int {
	if n <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.pos % n
	c.pos = nextCursor(start, n)

	return start
}

// position reports the current cursor value without advancing it.
func (c *rotationCursor) position() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pos
}
