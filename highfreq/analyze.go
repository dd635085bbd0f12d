package highfreq

import (
	"fmt"
	"os"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/hashfile"
)

// Analyze runs the full high-frequency analysis engine: a
// parallel scan produces per-worker shards, a pairwise merge tree
// collapses them to one file, and every k-mer whose appearance_nrow
// exceeds the configured threshold is written to store.
//
// Any worker or merge error aborts the run, unlinks every published shard,
// and is returned to the caller; the store is never updated on failure.
func Analyze(cfg Config, scanner RelationScanner, store HighFreqStore) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg := &shardRegistry{}
	cur := newCursor(scanner.BlockCount())
	cancelled := &cancelFlag{}
	errs := &firstError{}

	workerCount := cfg.WorkerCount
	if workerCount == 0 {
		workerCount = 1 // coordinator-only: the coordinator itself scans, serially.
	}

	log.Debug.Printf("highfreq: starting analysis relation=%s column=%s k=%d workers=%d",
		cfg.RelationID, cfg.Column, cfg.KmerSize, workerCount)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanWorker(cfg, scanner, cur, reg, cancelled, errs)
		}()
	}
	wg.Wait()

	if err := errs.get(); err != nil {
		reg.unlinkAll()
		return err
	}
	if cancelled.isSet() {
		reg.unlinkAll()
		return errors.E(errors.Canceled, errors.Errorf("highfreq: analysis cancelled"))
	}

	shardPaths := reg.snapshot()
	if len(shardPaths) == 0 {
		// Defensive: every worker always publishes a shard (even an empty
		// one) on a clean run, so this is unreachable in practice; kept
		// as a safety net against a future zero-worker code path.
		return store.Replace(cfg.RelationID, cfg.Column, cfg.KmerSize, nil)
	}

	mergeWorkers := cfg.MergeWorkerCount
	if mergeWorkers <= 0 {
		mergeWorkers = workerCount
	}
	survivor, err := mergeShards(shardPaths, mergeWorkers)
	if err != nil {
		reg.unlinkAll()
		return err
	}

	table, err := hashfile.Open(survivor)
	if err != nil {
		reg.unlinkAll()
		return err
	}
	defer func() {
		table.Close()
		removeQuiet(survivor)
	}()

	threshold := cfg.Threshold(scanner.TotalRows())
	var entries []Entry
	var iterErr error
	if err := table.Iterate(func(key, value uint64) bool {
		if value > threshold {
			entries = append(entries, Entry{
				KmerInt:        key,
				AppearanceNrow: value,
				Reason: fmt.Sprintf(
					"appearance_nrow=%d exceeds threshold=%d (max_rate=%v, max_nrow=%d)",
					value, threshold, cfg.HighFreqMaxRate, cfg.HighFreqMaxNrow),
			})
		}
		return true
	}); err != nil {
		iterErr = err
	}
	if iterErr != nil {
		return iterErr
	}

	log.Printf("highfreq: relation=%s column=%s emitting %d high-frequency k-mers (threshold=%d)",
		cfg.RelationID, cfg.Column, len(entries), threshold)

	// The persistent set is updated exactly once, at the end, with the
	// complete result.
	return store.Replace(cfg.RelationID, cfg.Column, cfg.KmerSize, entries)
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil {
		log.Error.Printf("highfreq: unlinking final shard %s: %v", path, err)
	}
}
