package highfreq

import "github.com/grailbio/kmersearch/bitseq"

// MemRelation is an in-memory reference RelationScanner.
// Rows are partitioned into blocks of BlockSize consecutive rows.
type MemRelation struct {
	Rows      []bitseq.Sequence
	BlockSize int
}

func (m *MemRelation) BlockCount() int {
	if m.BlockSize <= 0 {
		m.BlockSize = 1
	}
	return (len(m.Rows) + m.BlockSize - 1) / m.BlockSize
}

func (m *MemRelation) TotalRows() int {
	return len(m.Rows)
}

func (m *MemRelation) ScanBlock(blockID int) ([]Row, error) {
	bs := m.BlockSize
	if bs <= 0 {
		bs = 1
	}
	start := blockID * bs
	end := start + bs
	if end > len(m.Rows) {
		end = len(m.Rows)
	}
	if start > end {
		start = end
	}
	rows := make([]Row, end-start)
	for i, seq := range m.Rows[start:end] {
		rows[i] = Row{Sequence: seq}
	}
	return rows, nil
}

// MemStore is an in-memory reference HighFreqStore keyed by
// (relationID, column), recording the last Replace call's entries.
type MemStore struct {
	Entries map[string][]Entry
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{Entries: make(map[string][]Entry)}
}

func (s *MemStore) Replace(relationID, column string, k int, entries []Entry) error {
	s.Entries[memKey(relationID, column)] = entries
	return nil
}

func memKey(relationID, column string) string {
	return relationID + "\x00" + column
}
