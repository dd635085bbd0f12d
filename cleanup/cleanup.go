// Package cleanup implements the temp-tablespace shard cleanup command:
// it enumerates a temp-tablespace directory, deletes regular files whose
// names begin with highfreq.ShardPathPrefix and whose mtime predates a
// grace interval, and reports what it did.
//
// grailbio/bio has no equivalent sweep; the naming convention it
// enforces is established in package highfreq
// (shard.go's ShardPathPrefix), which this package imports rather than
// redeclaring to keep the two in lockstep. Grounded stylistically on
// ioutil.TempFile's directory-scoped naming idiom used throughout
// pileup/snp/pileup.go for per-worker temp files.
package cleanup

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/kmersearch/highfreq"
)

// DefaultGrace is the default minimum file age before cleanup will delete
// it.
const DefaultGrace = 60 * time.Second

// Result reports what one Run call did.
type Result struct {
	DeletedCount int
	DeletedBytes int64
	ErrorCount   int
}

// Run enumerates dir, deleting every regular file whose name begins with
// highfreq.ShardPathPrefix and whose mtime is older than now.Add(-grace).
// Files that don't match the prefix, or that are too new, are left alone
// untouched — this command only ever removes files it can positively
// identify as its own ephemeral shards.
//
// A per-file removal error increments ErrorCount and is logged, but does
// not abort the sweep; Run returns an error if the directory cannot be
// listed, which includes a failure to stat any of its entries.
func Run(dir string, grace time.Duration, now time.Time) (Result, error) {
	if grace <= 0 {
		grace = DefaultGrace
	}
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return Result{}, errors.E(errors.NotExist, errors.Errorf("cleanup: reading %s: %v", dir, err))
	}

	cutoff := now.Add(-grace)
	var res Result
	for _, fi := range entries {
		if fi.IsDir() || !fi.Mode().IsRegular() {
			continue
		}
		if !strings.HasPrefix(fi.Name(), highfreq.ShardPathPrefix) {
			continue
		}
		if fi.ModTime().After(cutoff) {
			continue // too recent: may still be in active use.
		}
		path := filepath.Join(dir, fi.Name())
		size := fi.Size()
		if err := os.Remove(path); err != nil {
			log.Error.Printf("cleanup: removing %s: %v", path, err)
			res.ErrorCount++
			continue
		}
		res.DeletedCount++
		res.DeletedBytes += size
	}
	return res, nil
}
