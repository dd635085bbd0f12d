package hashfile

import (
	"encoding/binary"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/kmersearch/kmer"
	"github.com/spaolacci/murmur3"
)

const (
	minBucketCount = 4096
	maxBucketCount = 16_777_216
)

// entrySize returns the on-disk entry record size for a chained key width:
// u32 entries are {key:u32, value:u64, next:u64} = 20B; u64 entries are
// {key:u64, value:u64, next:u64} = 24B.
func entrySize(width kmer.Width) int {
	if width == KeyWidth32 {
		return 20
	}
	return 24
}

// bucketCountForHint rounds hint/4 up to a power of two within
// [minBucketCount, maxBucketCount], targeting load factor <= 0.25 at hint.
func bucketCountForHint(hint int) uint64 {
	target := uint64(hint) / 4
	if target < minBucketCount {
		target = minBucketCount
	}
	if target > maxBucketCount {
		target = maxBucketCount
	}
	n := uint64(1)
	for n < target {
		n <<= 1
	}
	return n
}

// chainedTable is the u32/u64 variant: a power-of-two bucket directory of
// head offsets plus a bump-pointer entry region. The bucket index comes
// from the full MurmurHash3 hash of the key's little-endian bytes
// (murmur3.Sum32 over 4 bytes for u32; the low 32 bits of murmur3.Sum64
// over 8 bytes for u64), not from the bare MurmurHash3 finalizer applied
// to the key integer.
type chainedTable struct {
	f           *os.File
	path        string
	width       kmer.Width
	bucketCount uint64
}

func createChained(path string, width kmer.Width, hint int) (Table, error) {
	if width != KeyWidth32 && width != KeyWidth64 {
		return nil, errors.E(errors.Invalid, errors.Errorf("hashfile: chained table requires u32/u64 width, got %d", width))
	}
	bucketCount := bucketCountForHint(hint)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.E(errors.Invalid, errors.Errorf("hashfile: create %s: %v", path, err))
	}
	nextOffset := uint64(chainedHeaderSize) + bucketCount*8
	h := chainedHeader{
		version:         fileVersion,
		keyWidth:        width,
		bucketCount:     bucketCount,
		entryCount:      0,
		nextEntryOffset: nextOffset,
	}
	enc, err := h.encode()
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.WriteAt(enc, 0); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	// Bucket directory initialized to all-zero (empty chains) by Truncate.
	if err := f.Truncate(int64(nextOffset)); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	return &chainedTable{f: f, path: path, width: width, bucketCount: bucketCount}, nil
}

func openChained(path string) (Table, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.E(errors.NotExist, err)
	}
	hdr := make([]byte, chainedHeaderSize)
	if _, err := f.ReadAt(hdr, 0); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	h, err := decodeChainedHeader(hdr)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &chainedTable{f: f, path: path, width: h.keyWidth, bucketCount: h.bucketCount}, nil
}

func (t *chainedTable) readHeader() (chainedHeader, error) {
	hdr := make([]byte, chainedHeaderSize)
	if _, err := t.f.ReadAt(hdr, 0); err != nil {
		return chainedHeader{}, errors.E(errors.Invalid, err)
	}
	return decodeChainedHeader(hdr)
}

func (t *chainedTable) writeHeader(h chainedHeader) error {
	enc, err := h.encode()
	if err != nil {
		return err
	}
	if _, err := t.f.WriteAt(enc, 0); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

func (t *chainedTable) bucketIndex(key uint64) uint64 {
	var h32 uint32
	if t.width == KeyWidth32 {
		h32 = murmur3.Sum32(encodeKeyBytes(key, 4))
	} else {
		sum := murmur3.Sum64(encodeKeyBytes(key, 8))
		h32 = uint32(sum)
	}
	return uint64(h32) & (t.bucketCount - 1)
}

func encodeKeyBytes(key uint64, width int) []byte {
	buf := make([]byte, width)
	if width == 4 {
		binary.LittleEndian.PutUint32(buf, uint32(key))
	} else {
		binary.LittleEndian.PutUint64(buf, key)
	}
	return buf
}

func (t *chainedTable) bucketHeadOffset(bucket uint64) int64 {
	return chainedHeaderSize + int64(bucket)*8
}

func (t *chainedTable) readBucketHead(bucket uint64) (uint64, error) {
	var buf [8]byte
	if _, err := t.f.ReadAt(buf[:], t.bucketHeadOffset(bucket)); err != nil {
		return 0, errors.E(errors.Invalid, err)
	}
	return leUint64(buf[:]), nil
}

func (t *chainedTable) writeBucketHead(bucket, offset uint64) error {
	var buf [8]byte
	putLeUint64(buf[:], offset)
	if _, err := t.f.WriteAt(buf[:], t.bucketHeadOffset(bucket)); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

// entry fields, read/written as {key, value, next}.
type chainedEntry struct {
	key   uint64
	value uint64
	next  uint64
}

func (t *chainedTable) readEntry(offset uint64) (chainedEntry, error) {
	size := entrySize(t.width)
	buf := make([]byte, size)
	if _, err := t.f.ReadAt(buf, int64(offset)); err != nil {
		return chainedEntry{}, errors.E(errors.Invalid, err)
	}
	var e chainedEntry
	if t.width == KeyWidth32 {
		e.key = uint64(binary.LittleEndian.Uint32(buf[0:4]))
		e.value = binary.LittleEndian.Uint64(buf[4:12])
		e.next = binary.LittleEndian.Uint64(buf[12:20])
	} else {
		e.key = binary.LittleEndian.Uint64(buf[0:8])
		e.value = binary.LittleEndian.Uint64(buf[8:16])
		e.next = binary.LittleEndian.Uint64(buf[16:24])
	}
	return e, nil
}

func (t *chainedTable) writeEntry(offset uint64, e chainedEntry) error {
	size := entrySize(t.width)
	buf := make([]byte, size)
	if t.width == KeyWidth32 {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(e.key))
		binary.LittleEndian.PutUint64(buf[4:12], e.value)
		binary.LittleEndian.PutUint64(buf[12:20], e.next)
	} else {
		binary.LittleEndian.PutUint64(buf[0:8], e.key)
		binary.LittleEndian.PutUint64(buf[8:16], e.value)
		binary.LittleEndian.PutUint64(buf[16:24], e.next)
	}
	if _, err := t.f.WriteAt(buf, int64(offset)); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

func (t *chainedTable) Add(key uint64, delta uint64) error {
	bucket := t.bucketIndex(key)
	head, err := t.readBucketHead(bucket)
	if err != nil {
		return err
	}
	offset := head
	for offset != 0 {
		e, err := t.readEntry(offset)
		if err != nil {
			return err
		}
		if e.key == key {
			e.value += delta
			return t.writeEntry(offset, e)
		}
		offset = e.next
	}
	// Not found: allocate a new entry at the bump pointer, splice at the
	// head of the chain.
	h, err := t.readHeader()
	if err != nil {
		return err
	}
	newOffset := h.nextEntryOffset
	if err := t.writeEntry(newOffset, chainedEntry{key: key, value: delta, next: head}); err != nil {
		return err
	}
	if err := t.writeBucketHead(bucket, newOffset); err != nil {
		return err
	}
	h.nextEntryOffset += uint64(entrySize(t.width))
	h.entryCount++
	return t.writeHeader(h)
}

func (t *chainedTable) Get(key uint64) (uint64, error) {
	bucket := t.bucketIndex(key)
	offset, err := t.readBucketHead(bucket)
	if err != nil {
		return 0, err
	}
	for offset != 0 {
		e, err := t.readEntry(offset)
		if err != nil {
			return 0, err
		}
		if e.key == key {
			return e.value, nil
		}
		offset = e.next
	}
	return 0, nil
}

func (t *chainedTable) Iterate(fn func(key, value uint64) bool) error {
	h, err := t.readHeader()
	if err != nil {
		return err
	}
	size := uint64(entrySize(t.width))
	start := chainedHeaderSize + h.bucketCount*8
	for offset := start; offset < h.nextEntryOffset; offset += size {
		e, err := t.readEntry(offset)
		if err != nil {
			return err
		}
		if e.value == 0 {
			continue
		}
		if !fn(e.key, e.value) {
			break
		}
	}
	return nil
}

func (t *chainedTable) Stats() Stats {
	h, err := t.readHeader()
	if err != nil {
		return Stats{}
	}
	return Stats{EntryCount: h.entryCount, BucketCount: h.bucketCount}
}

func (t *chainedTable) Path() string { return t.path }

func (t *chainedTable) Close() error {
	return t.f.Close()
}
