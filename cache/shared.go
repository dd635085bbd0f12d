package cache

import (
	"encoding/binary"
	"sync"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/minio/highwayhash"
	"golang.org/x/sys/unix"
)

var _ Cache = (*SharedCache)(nil)

// sharedEntrySize is the per-slot layout of SharedCache's open-addressing
// table: an 8-byte occupied flag (0 = empty) followed by the 8-byte kmer
// integer. A separate occupied flag is required (rather than a reserved
// zero-kmer sentinel, as fusion/kmer_index.go uses for its GeneID map)
// because a k-mer integer of 0 ("AAAA...") is itself a valid key here.
const sharedEntrySize = 16

// maxSharedCollisions bounds linear-probe chain length per lookup, mirroring
// fusion/kmer_index.go's maxCollisions guard against a pathologically
// undersized table.
const maxSharedCollisions = 64

// highwayhashKey is a fixed key for the build-completion checksum below.
// HighwayHash requires a 32-byte key; its value has no security role here
// (the checksum only detects accidental corruption, not tampering).
var highwayhashKey = make([]byte, 32)

// SharedCache is the shared-memory high-frequency cache variant: multiple
// readers, single initializing writer; readers take a shared latch
// during lookup. It is built once, in full, before any
// concurrent build worker calls Contains, mirroring
// fusion/kmer_index.go's mmap'd, farmhash-sharded, linear-probed table —
// adapted from a kmer->genelist map to a kmer membership set, and from raw
// unsafe.Pointer arithmetic to offset arithmetic over a plain mmap'd byte
// slice (no Go structs are laid over the mapping).
type SharedCache struct {
	mu       sync.RWMutex // guards Contains against a concurrent Close.
	data     []byte
	slots    uint64 // power of two
	checksum uint64 // highwayhash.Sum64 of the finished table, returned by Checksum.
	closed   bool
}

// NewSharedCache builds a SharedCache over kmerInts in one pass. The
// caller must not call Contains concurrently with NewSharedCache itself;
// once it returns, the returned cache is safe for concurrent read-only use
// by multiple index-build workers.
func NewSharedCache(kmerInts []uint64) (*SharedCache, error) {
	// Size generously (4x the entry count, like kmer_index.go's loadFactor)
	// so maxSharedCollisions is never realistically hit.
	minSlots := uint64(len(kmerInts)+1) * 4
	slots := uint64(1)
	for slots < minSlots {
		slots <<= 1
	}

	size := slots * sharedEntrySize
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.E(errors.Invalid, errors.Errorf("cache: mmap shared table: %v", err))
	}
	if err := unix.Madvise(data, unix.MADV_HUGEPAGE); err != nil {
		// Non-fatal: hugepages are an optimization, not a correctness
		// requirement.
		_ = err
	}

	c := &SharedCache{data: data, slots: slots}
	for _, k := range kmerInts {
		if err := c.insert(k); err != nil {
			unix.Munmap(data)
			return nil, err
		}
	}
	sum, err := highwayhash.New64(highwayhashKey)
	if err != nil {
		unix.Munmap(data)
		return nil, errors.E(errors.Invalid, err)
	}
	sum.Write(c.data)
	c.checksum = sum.Sum64()
	return c, nil
}

func (c *SharedCache) slotOffset(idx uint64) uint64 {
	return idx * sharedEntrySize
}

func (c *SharedCache) insert(k uint64) error {
	idx := farm.Hash64WithSeed(nil, k) & (c.slots - 1)
	for i := 0; i <= maxSharedCollisions; i++ {
		off := c.slotOffset(idx)
		occupied := binary.LittleEndian.Uint64(c.data[off : off+8])
		if occupied == 0 {
			binary.LittleEndian.PutUint64(c.data[off:off+8], 1)
			binary.LittleEndian.PutUint64(c.data[off+8:off+16], k)
			return nil
		}
		if binary.LittleEndian.Uint64(c.data[off+8:off+16]) == k {
			return nil // already present.
		}
		idx = (idx + 1) & (c.slots - 1)
	}
	return errors.E(errors.Invalid, errors.Errorf("cache: shared table undersized, exceeded %d collisions", maxSharedCollisions))
}

// Contains reports whether kmerInt is a member of the high-frequency set.
func (c *SharedCache) Contains(kmerInt uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	idx := farm.Hash64WithSeed(nil, kmerInt) & (c.slots - 1)
	for i := 0; i <= maxSharedCollisions; i++ {
		off := c.slotOffset(idx)
		occupied := binary.LittleEndian.Uint64(c.data[off : off+8])
		if occupied == 0 {
			return false
		}
		if binary.LittleEndian.Uint64(c.data[off+8:off+16]) == kmerInt {
			return true
		}
		idx = (idx + 1) & (c.slots - 1)
	}
	return false
}

// Checksum returns the highwayhash digest computed when the table finished
// building, so a caller publishing the cache to other processes/goroutines
// can verify it was handed off intact.
func (c *SharedCache) Checksum() uint64 {
	return c.checksum
}

func (c *SharedCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Munmap(c.data)
}
