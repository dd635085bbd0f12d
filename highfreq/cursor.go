package highfreq

import "sync/atomic"

// cursor is the shared atomic block cursor scan workers fetch-add against.
// Block assignment is unordered but exclusive: each call to Next returns
// a distinct blockID until exhausted.
type cursor struct {
	next  int64
	limit int64
}

func newCursor(blockCount int) *cursor {
	return &cursor{limit: int64(blockCount)}
}

// Next returns the next blockID to scan and ok=true, or ok=false once
// every block has been claimed.
func (c *cursor) Next() (int, bool) {
	n := atomic.AddInt64(&c.next, 1) - 1
	if n >= c.limit {
		return 0, false
	}
	return int(n), true
}
