package hashfile

import (
	"os"

	"github.com/grailbio/base/errors"
	"golang.org/x/sys/unix"
)

// directTable is the u16 variant: a fixed 65,536-slot array of u64
// counters, addressed directly by key with no in-process cache — every
// Add/Get is a pread/pwrite against the OS page cache.
type directTable struct {
	f    *os.File
	path string
}

func createDirect(path string) (Table, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.E(errors.Invalid, errors.Errorf("hashfile: create %s: %v", path, err))
	}
	h := directHeader{version: fileVersion, entryCount: 0}
	if _, err := f.WriteAt(h.encode(), 0); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	size := int64(directHeaderSize + directSlotCount*8)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	return &directTable{f: f, path: path}, nil
}

func openDirect(path string) (Table, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.E(errors.NotExist, err)
	}
	hdr := make([]byte, directHeaderSize)
	if _, err := f.ReadAt(hdr, 0); err != nil {
		f.Close()
		return nil, errors.E(errors.Invalid, err)
	}
	if _, err := decodeDirectHeader(hdr); err != nil {
		f.Close()
		return nil, err
	}
	return &directTable{f: f, path: path}, nil
}

func (t *directTable) slotOffset(key uint64) (int64, error) {
	if key > 0xffff {
		return 0, errors.E(errors.Invalid, errors.Errorf("hashfile: key %d exceeds u16 range", key))
	}
	return int64(directHeaderSize) + int64(key)*8, nil
}

func (t *directTable) Add(key uint64, delta uint64) error {
	off, err := t.slotOffset(key)
	if err != nil {
		return err
	}
	var buf [8]byte
	if _, err := unix.Pread(int(t.f.Fd()), buf[:], off); err != nil {
		return errors.E(errors.Invalid, errors.Errorf("hashfile: pread %s@%d: %v", t.path, off, err))
	}
	cur := leUint64(buf[:])
	wasZero := cur == 0
	cur += delta
	putLeUint64(buf[:], cur)
	if _, err := unix.Pwrite(int(t.f.Fd()), buf[:], off); err != nil {
		return errors.E(errors.Invalid, errors.Errorf("hashfile: pwrite %s@%d: %v", t.path, off, err))
	}
	if wasZero && delta != 0 {
		if err := t.bumpEntryCount(1); err != nil {
			return err
		}
	}
	return nil
}

func (t *directTable) Get(key uint64) (uint64, error) {
	off, err := t.slotOffset(key)
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	if _, err := unix.Pread(int(t.f.Fd()), buf[:], off); err != nil {
		return 0, errors.E(errors.Invalid, errors.Errorf("hashfile: pread %s@%d: %v", t.path, off, err))
	}
	return leUint64(buf[:]), nil
}

func (t *directTable) Iterate(fn func(key, value uint64) bool) error {
	buf := make([]byte, directSlotCount*8)
	if _, err := t.f.ReadAt(buf, directHeaderSize); err != nil {
		return errors.E(errors.Invalid, err)
	}
	for key := 0; key < directSlotCount; key++ {
		v := leUint64(buf[key*8 : key*8+8])
		if v == 0 {
			continue
		}
		if !fn(uint64(key), v) {
			break
		}
	}
	return nil
}

func (t *directTable) Stats() Stats {
	hdr := make([]byte, directHeaderSize)
	t.f.ReadAt(hdr, 0)
	h, err := decodeDirectHeader(hdr)
	if err != nil {
		return Stats{}
	}
	return Stats{EntryCount: h.entryCount}
}

func (t *directTable) Path() string { return t.path }

func (t *directTable) Close() error {
	return t.f.Close()
}

func (t *directTable) bumpEntryCount(delta uint64) error {
	hdr := make([]byte, directHeaderSize)
	if _, err := t.f.ReadAt(hdr, 0); err != nil {
		return errors.E(errors.Invalid, err)
	}
	h, err := decodeDirectHeader(hdr)
	if err != nil {
		return err
	}
	h.entryCount += delta
	if _, err := t.f.WriteAt(h.encode(), 0); err != nil {
		return errors.E(errors.Invalid, err)
	}
	return nil
}

func leUint64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func putLeUint64(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
