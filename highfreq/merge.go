package highfreq

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/hashfile"
)

// shardPool is the claimable-pair pool the merge-worker pool draws from.
// The mutex plays the role of a spinlock-protected shared registry.
type shardPool struct {
	mu    sync.Mutex
	items []string
}

// claimPair atomically removes and returns two paths from the pool, or
// ok=false if fewer than two remain.
func (p *shardPool) claimPair() (a, b string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) < 2 {
		return "", "", false
	}
	n := len(p.items)
	a, b = p.items[n-1], p.items[n-2]
	p.items = p.items[:n-2]
	return a, b, true
}

func (p *shardPool) publish(path string) {
	p.mu.Lock()
	p.items = append(p.items, path)
	p.mu.Unlock()
}

func (p *shardPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// mergeShards runs the pairwise merge tree over paths and returns the path
// of the single surviving file. Merge order is unspecified
// (commutative/associative on (key,+)); workerCount bounds how many merges
// run concurrently, reusing the scan workers post-scan.
//
// Grounded on pileup/snp's traverse.Each-style fan-out for "N independent
// workers draining a shared unit of work", adapted here to a
// claim-a-pair-until-one-remains pool instead of a fixed index range.
func mergeShards(paths []string, workerCount int) (string, error) {
	if len(paths) == 0 {
		return "", errors.E(errors.Invalid, errors.Errorf("highfreq: merge called with no shards"))
	}
	if len(paths) == 1 {
		return paths[0], nil
	}
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &shardPool{items: append([]string(nil), paths...)}
	remaining := int32(len(paths) - 1) // number of merges still required to reach one survivor.
	errs := &firstError{}

	var wg sync.WaitGroup
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				a, b, ok := pool.claimPair()
				if !ok {
					if atomic.LoadInt32(&remaining) <= 0 {
						return
					}
					// Another worker is mid-merge and will publish a
					// survivor shortly; yield and retry.
					runtime.Gosched()
					continue
				}
				survivor, err := mergePair(a, b)
				if err != nil {
					errs.set(err)
					atomic.StoreInt32(&remaining, 0)
					return
				}
				pool.publish(survivor)
				atomic.AddInt32(&remaining, -1)
			}
		}()
	}
	wg.Wait()

	if err := errs.get(); err != nil {
		return "", err
	}
	if pool.len() != 1 {
		return "", errors.E(errors.Integrity, errors.Errorf("highfreq: merge tree left %d shards, want 1", pool.len()))
	}
	return pool.items[0], nil
}

// mergePair opens both shards, merges the smaller (by file size) into the
// larger, and returns the surviving path. hashfile.Merge unlinks the
// source on success.
func mergePair(pathA, pathB string) (string, error) {
	sizeA, err := fileSize(pathA)
	if err != nil {
		return "", err
	}
	sizeB, err := fileSize(pathB)
	if err != nil {
		return "", err
	}
	dstPath, srcPath := pathA, pathB
	if sizeA < sizeB {
		dstPath, srcPath = pathB, pathA
	}

	dst, err := hashfile.Open(dstPath)
	if err != nil {
		return "", err
	}
	src, err := hashfile.Open(srcPath)
	if err != nil {
		dst.Close()
		return "", err
	}
	if err := hashfile.Merge(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", errors.E(errors.Integrity, err)
	}
	log.Debug.Printf("highfreq: merged %s into %s", srcPath, dstPath)
	return dstPath, nil
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, errors.E(errors.NotExist, err)
	}
	return fi.Size(), nil
}
