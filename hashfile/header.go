// Package hashfile implements the three on-disk (key -> row-occurrence
// count) layouts from : a u16 direct-addressed counter array
// and u32/u64 chained hash tables. Grounded on fusion/kmer_index.go's
// sharded on-disk table design, generalized from a single fixed key width
// to three explicit wire layouts and from an in-memory/mmap structure to a
// plain pread/pwrite-backed file.
package hashfile

import (
	"encoding/binary"
	"os"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/kmersearch/kmer"
)

// KeyWidth identifies which of the three on-disk layouts a file uses.
type KeyWidth = kmer.Width

const (
	KeyWidth16 = kmer.Width16
	KeyWidth32 = kmer.Width32
	KeyWidth64 = kmer.Width64
)

var (
	magicU16 = [4]byte{'K', 'M', 'R', '1'}
	magicU32 = [4]byte{'K', 'M', 'R', '2'}
	magicU64 = [4]byte{'K', 'M', 'R', '3'}
)

const fileVersion = 1

// directSlotCount is the fixed size of the u16 variant's direct-addressed
// counter array: one u64 counter per possible 16-bit key.
const directSlotCount = 1 << 16

// directHeaderSize is the 32-byte header preceding the u16 counter array:
// magic(4) + version(4) + keyType(4) + entryCount(8) + reserved(4) + checksum(8).
const directHeaderSize = 32

// chainedHeaderSize is the 64-byte header preceding a chained table's
// bucket directory: magic(4) + version(4) + keyType(4) + bucketCount(8) +
// entryCount(8) + nextEntryOffset(8) + reserved(20) + checksum(8).
const chainedHeaderSize = 64

type directHeader struct {
	version    uint32
	entryCount uint64
}

func (h directHeader) encode() []byte {
	buf := make([]byte, directHeaderSize)
	copy(buf[0:4], magicU16[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(KeyWidth16))
	binary.LittleEndian.PutUint64(buf[12:20], h.entryCount)
	// buf[20:24] reserved, left zero.
	checksum := seahash.Sum64(buf[0:24])
	binary.LittleEndian.PutUint64(buf[24:32], checksum)
	return buf
}

func decodeDirectHeader(buf []byte) (directHeader, error) {
	if len(buf) != directHeaderSize {
		return directHeader{}, errors.E(errors.Invalid, errors.Errorf("hashfile: short direct header (%d bytes)", len(buf)))
	}
	if [4]byte{buf[0], buf[1], buf[2], buf[3]} != magicU16 {
		return directHeader{}, errors.E(errors.Invalid, errors.Errorf("hashfile: bad direct-table magic"))
	}
	keyType := binary.LittleEndian.Uint32(buf[8:12])
	if kmer.Width(keyType) != KeyWidth16 {
		return directHeader{}, errors.E(errors.Invalid, errors.Errorf("hashfile: direct table key_type=%d, want %d", keyType, KeyWidth16))
	}
	want := binary.LittleEndian.Uint64(buf[24:32])
	got := seahash.Sum64(buf[0:24])
	if got != want {
		return directHeader{}, errors.E(errors.Integrity, errors.Errorf("hashfile: direct header checksum mismatch"))
	}
	return directHeader{
		version:    binary.LittleEndian.Uint32(buf[4:8]),
		entryCount: binary.LittleEndian.Uint64(buf[12:20]),
	}, nil
}

type chainedHeader struct {
	version         uint32
	keyWidth        kmer.Width
	bucketCount     uint64
	entryCount      uint64
	nextEntryOffset uint64
}

func magicForWidth(w kmer.Width) ([4]byte, error) {
	switch w {
	case KeyWidth32:
		return magicU32, nil
	case KeyWidth64:
		return magicU64, nil
	default:
		return [4]byte{}, errors.E(errors.Invalid, errors.Errorf("hashfile: chained tables support u32/u64 keys only, got width %d", w))
	}
}

func (h chainedHeader) encode() ([]byte, error) {
	magic, err := magicForWidth(h.keyWidth)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, chainedHeaderSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.keyWidth))
	binary.LittleEndian.PutUint64(buf[12:20], h.bucketCount)
	binary.LittleEndian.PutUint64(buf[20:28], h.entryCount)
	binary.LittleEndian.PutUint64(buf[28:36], h.nextEntryOffset)
	// buf[36:56] reserved, left zero.
	checksum := seahash.Sum64(buf[0:56])
	binary.LittleEndian.PutUint64(buf[56:64], checksum)
	return buf, nil
}

func decodeChainedHeader(buf []byte) (chainedHeader, error) {
	if len(buf) != chainedHeaderSize {
		return chainedHeader{}, errors.E(errors.Invalid, errors.Errorf("hashfile: short chained header (%d bytes)", len(buf)))
	}
	magic := [4]byte{buf[0], buf[1], buf[2], buf[3]}
	var keyWidth kmer.Width
	switch magic {
	case magicU32:
		keyWidth = KeyWidth32
	case magicU64:
		keyWidth = KeyWidth64
	default:
		return chainedHeader{}, errors.E(errors.Invalid, errors.Errorf("hashfile: bad chained-table magic"))
	}
	want := binary.LittleEndian.Uint64(buf[56:64])
	got := seahash.Sum64(buf[0:56])
	if got != want {
		return chainedHeader{}, errors.E(errors.Integrity, errors.Errorf("hashfile: chained header checksum mismatch"))
	}
	return chainedHeader{
		version:         binary.LittleEndian.Uint32(buf[4:8]),
		keyWidth:        keyWidth,
		bucketCount:     binary.LittleEndian.Uint64(buf[12:20]),
		entryCount:      binary.LittleEndian.Uint64(buf[20:28]),
		nextEntryOffset: binary.LittleEndian.Uint64(buf[28:36]),
	}, nil
}

// Stats surfaces on-disk table diagnostics (entry/bucket counts) for
// logging, per SPEC_FULL.md's ambient-stack conventions.
type Stats struct {
	EntryCount  uint64
	BucketCount uint64 // 0 for the u16 direct variant.
}

func sniffMagic(path string) ([4]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [4]byte{}, errors.E(errors.NotExist, err)
	}
	defer f.Close()
	var buf [4]byte
	if _, err := f.ReadAt(buf[:], 0); err != nil {
		return [4]byte{}, errors.E(errors.Invalid, errors.Errorf("hashfile: cannot read magic from %s: %v", path, err))
	}
	return buf, nil
}
