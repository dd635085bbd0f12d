package highfreq

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/grailbio/base/errors"
)

// ShardPathPrefix names every file this package creates under a
// temp-tablespace directory: "the prefix pg_kmersearch_ is
// mandatory and used by the cleanup utility to identify safely-deletable
// files". Shared with package cleanup.
const ShardPathPrefix = "pg_kmersearch_"

// newShardPath returns a fresh, unique path under tempDir following
// ShardPathPrefix's naming pattern: <prefix><pid>_<randsuffix>.
func newShardPath(tempDir string) (string, error) {
	var suffix [8]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", errors.E(errors.Invalid, errors.Errorf("highfreq: generating shard suffix: %v", err))
	}
	name := fmt.Sprintf("%s%d_%s", ShardPathPrefix, os.Getpid(), hex.EncodeToString(suffix[:]))
	return filepath.Join(tempDir, name), nil
}

// shardRegistry is the shared path table scan workers publish into and the
// coordinator/merger read from.
// A sync.Mutex stands in for the source's spinlock.
type shardRegistry struct {
	mu    sync.Mutex
	paths []string
}

func (r *shardRegistry) add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *shardRegistry) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// unlinkAll removes every registered shard path, silently ignoring
// individual failures: a best-effort teardown where the
// coordinator unlinks every published shard path regardless of outcome.
func (r *shardRegistry) unlinkAll() {
	for _, p := range r.snapshot() {
		_ = os.Remove(p)
	}
}

// firstError records only the first non-nil error reported to it, matching
// the coordinator's "collects the first error" propagation policy.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
