package highfreq

import (
	"os"

	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/hashfile"
	"github.com/grailbio/kmersearch/kmer"
)

// scanWorker runs one scan worker's loop: it owns exactly one on-disk shard for its lifetime, pulls blocks
// from the shared cursor until exhausted or cancelled, deduplicates k-mers
// within each row, and flushes its in-memory aggregate into the shard
// whenever it reaches cfg.BatchSize distinct keys.
//
// Grounded on markduplicates.Mark's per-worker goroutine body
// (mark_duplicates.go: "for { shard, ok := <-shardChannel; ... }"),
// generalized from a channel pull to a cursor fetch-add, and on
// fusion/gene_db.go's registerKmer in-memory aggregation idiom.
func scanWorker(cfg Config, scanner RelationScanner, cur *cursor, reg *shardRegistry, cancelled *cancelFlag, errs *firstError) {
	path, err := newShardPath(cfg.TempDir)
	if err != nil {
		errs.set(err)
		cancelled.set()
		return
	}

	published := false
	defer func() {
		if !published {
			// Cancellation or a worker error: the shard was never handed
			// to the registry, so nothing else will clean it up. On
			// cancellation, a worker flushes nothing further and just
			// closes its files.
			os.Remove(path)
		}
	}()

	shard, err := hashfile.Create(path, cfg.keyWidth(), cfg.HashTableSizeHint)
	if err != nil {
		errs.set(err)
		cancelled.set()
		return
	}
	defer shard.Close()

	aggregate := make(map[uint64]uint64, cfg.BatchSize)
	flush := func() error {
		for k, v := range aggregate {
			if err := shard.Add(k, v); err != nil {
				return err
			}
		}
		for k := range aggregate {
			delete(aggregate, k)
		}
		return nil
	}

	for !cancelled.isSet() {
		blockID, ok := cur.Next()
		if !ok {
			break
		}
		rows, err := scanner.ScanBlock(blockID)
		if err != nil {
			errs.set(err)
			cancelled.set()
			return
		}
		for _, row := range rows {
			arr, skipped, err := kmer.Extract(row.Sequence, cfg.KmerSize, cfg.Alphabet, cfg.DNA4)
			if err != nil {
				errs.set(err)
				cancelled.set()
				return
			}
			if skipped.Count > 0 {
				log.Debug.Printf("highfreq: block %d row skipped %d DNA4 windows over expansion ceiling", blockID, skipped.Count)
			}
			// Dedup within the row: a k-mer appearing multiple times in
			// one row contributes exactly 1 to appearance_nrow.
			seen := make(map[uint64]struct{}, arr.Len())
			for i := 0; i < arr.Len(); i++ {
				seen[arr.At(i)] = struct{}{}
			}
			for k := range seen {
				aggregate[k]++
			}
			if len(aggregate) >= cfg.BatchSize {
				if err := flush(); err != nil {
					errs.set(err)
					cancelled.set()
					return
				}
			}
		}
	}
	if cancelled.isSet() {
		return
	}
	if err := flush(); err != nil {
		errs.set(err)
		cancelled.set()
		return
	}
	reg.add(path)
	published = true
}
