package hashfile

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/kmersearch/kmer"
)

// Table is a file-backed (key -> row-occurrence count) mapping, exclusively
// owned by the process/worker that created or opened it.
type Table interface {
	// Add increments the counter for key by delta, creating the entry if
	// absent.
	Add(key uint64, delta uint64) error
	// Get returns the current counter for key, or 0 if absent.
	Get(key uint64) (uint64, error)
	// Iterate calls fn for every entry with value > 0. For the u16 direct
	// variant this is ascending key order; for chained variants it is
	// file-allocation order. Stops early if fn returns false.
	Iterate(fn func(key, value uint64) bool) error
	// Stats reports entry/bucket counts for diagnostics.
	Stats() Stats
	// Path returns the backing file's path.
	Path() string
	// Close releases the file handle without deleting the file.
	Close() error
}

// Create creates a new table file at path for the given key width. hint is
// an expected-entry-count hint used to size the chained variants' bucket
// directory; it is ignored for the u16 variant,
// which is always exactly 65,536 slots.
func Create(path string, width kmer.Width, hint int) (Table, error) {
	switch width {
	case KeyWidth16:
		return createDirect(path)
	case KeyWidth32, KeyWidth64:
		return createChained(path, width, hint)
	default:
		return nil, errors.E(errors.Invalid, errors.Errorf("hashfile: unsupported key width %d", width))
	}
}

// Open opens an existing table file, detecting its layout from the header
// magic.
func Open(path string) (Table, error) {
	magic, err := sniffMagic(path)
	if err != nil {
		return nil, err
	}
	switch magic {
	case magicU16:
		return openDirect(path)
	case magicU32, magicU64:
		return openChained(path)
	default:
		return nil, errors.E(errors.Invalid, errors.Errorf("hashfile: %s has unrecognized magic %q", path, magic))
	}
}
