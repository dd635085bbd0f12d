package hashfile

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/kmersearch/kmer"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectAddGetIterate(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	tbl, err := Create(filepath.Join(dir, "t.u16"), KeyWidth16, 0)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Add(5, 3))
	require.NoError(t, tbl.Add(5, 2))
	require.NoError(t, tbl.Add(9, 1))

	v, err := tbl.Get(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	v, err = tbl.Get(1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	seen := map[uint64]uint64{}
	require.NoError(t, tbl.Iterate(func(k, v uint64) bool {
		seen[k] = v
		return true
	}))
	assert.Equal(t, map[uint64]uint64{5: 5, 9: 1}, seen)
	assert.Equal(t, uint64(2), tbl.Stats().EntryCount)
}

func TestDirectReopen(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(dir, "t.u16")

	tbl, err := Create(path, KeyWidth16, 0)
	require.NoError(t, err)
	require.NoError(t, tbl.Add(42, 7))
	require.NoError(t, tbl.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.Get(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}

func TestChainedAddGetIterate(t *testing.T) {
	for _, width := range []kmer.Width{KeyWidth32, KeyWidth64} {
		dir, cleanup := testutil.TempDir(t, "", "")
		defer cleanup()

		tbl, err := Create(filepath.Join(dir, "t.chained"), width, 100)
		require.NoError(t, err)
		defer tbl.Close()

		keys := []uint64{1, 2, 17, 4096, 1 << 20}
		for _, k := range keys {
			require.NoError(t, tbl.Add(k, 1))
			require.NoError(t, tbl.Add(k, 1))
		}
		for _, k := range keys {
			v, err := tbl.Get(k)
			require.NoError(t, err)
			assert.Equal(t, uint64(2), v, "width=%d key=%d", width, k)
		}

		seen := map[uint64]uint64{}
		require.NoError(t, tbl.Iterate(func(k, v uint64) bool {
			seen[k] = v
			return true
		}))
		for _, k := range keys {
			assert.Equal(t, uint64(2), seen[k])
		}
		assert.Equal(t, uint64(len(keys)), tbl.Stats().EntryCount)
	}
}

func TestChainedCollidingBucket(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	// hint=1 clamps to the minimum bucket count, so many of these 500 keys
	// land in the same bucket and exercise chain walking on Add/Get.
	tbl, err := Create(filepath.Join(dir, "t.chained"), KeyWidth32, 1)
	require.NoError(t, err)
	defer tbl.Close()
	assert.Equal(t, uint64(minBucketCount), tbl.(*chainedTable).bucketCount)

	for k := uint64(0); k < 500; k++ {
		require.NoError(t, tbl.Add(k, k+1))
	}
	for k := uint64(0); k < 500; k++ {
		v, err := tbl.Get(k)
		require.NoError(t, err)
		assert.Equal(t, k+1, v)
	}
}

func TestMergeAddsSourceIntoDestination(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	dst, err := Create(filepath.Join(dir, "dst.u16"), KeyWidth16, 0)
	require.NoError(t, err)
	defer dst.Close()
	srcPath := filepath.Join(dir, "src.u16")
	src, err := Create(srcPath, KeyWidth16, 0)
	require.NoError(t, err)

	require.NoError(t, dst.Add(1, 10))
	require.NoError(t, src.Add(1, 5))
	require.NoError(t, src.Add(2, 3))

	require.NoError(t, Merge(dst, src))

	v, err := dst.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), v)
	v, err = dst.Get(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	_, err = Open(srcPath)
	require.Error(t, err, "merged source must be unlinked")
}

func TestMergeLawChainedPointwiseAdd(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	a, err := Create(filepath.Join(dir, "a"), KeyWidth32, 64)
	require.NoError(t, err)
	b, err := Create(filepath.Join(dir, "b"), KeyWidth32, 64)
	require.NoError(t, err)

	require.NoError(t, a.Add(10, 2))
	require.NoError(t, a.Add(20, 1))
	require.NoError(t, b.Add(10, 3))
	require.NoError(t, b.Add(30, 4))

	require.NoError(t, Merge(a, b))

	got := map[uint64]uint64{}
	require.NoError(t, a.Iterate(func(k, v uint64) bool {
		got[k] = v
		return true
	}))
	assert.Equal(t, map[uint64]uint64{10: 5, 20: 1, 30: 4}, got)
}
