package highfreq

import "sync/atomic"

// cancelFlag is the shared cancellation flag checked between blocks and
// between merges. Any worker error sets it;
// all workers observe it and unwind without flushing further work.
type cancelFlag struct {
	flag int32
}

func (c *cancelFlag) set() {
	atomic.StoreInt32(&c.flag, 1)
}

func (c *cancelFlag) isSet() bool {
	return atomic.LoadInt32(&c.flag) != 0
}
