package hashfile

import (
	"os"

	"github.com/grailbio/base/errors"
)

// Merge folds every entry of src into dst by key-wise addition: iterate
// src, add each entry into dst, then unlink src once every entry has been
// folded in. Both tables must share the same key width; merging across
// widths is a caller error. dst remains open; src is closed and removed.
func Merge(dst, src Table) error {
	var addErr error
	err := src.Iterate(func(key, value uint64) bool {
		if err := dst.Add(key, value); err != nil {
			addErr = err
			return false
		}
		return true
	})
	if err != nil {
		return errors.E(errors.Invalid, errors.Errorf("hashfile: iterating merge source %s: %v", src.Path(), err))
	}
	if addErr != nil {
		return errors.E(errors.Invalid, errors.Errorf("hashfile: merge %s into %s: %v", src.Path(), dst.Path(), addErr))
	}
	srcPath := src.Path()
	if err := src.Close(); err != nil {
		return errors.E(errors.Invalid, err)
	}
	if err := os.Remove(srcPath); err != nil {
		return errors.E(errors.Invalid, errors.Errorf("hashfile: unlink merged source %s: %v", srcPath, err))
	}
	return nil
}
