package stream

const DefaultMaxRecords = 1000

// Buffer is a fixed-capacity ring of records kept in arrival order. When
// full, appending evicts the oldest record. It is not safe for concurrent
// use.
type Buffer struct {
	items []Record
	start int
	n     int
	total uint64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultMaxRecords
	}
	return &Buffer{items: make([]Record, capacity)}
}

// Append adds r and reports whether a record was evicted to make room.
func (b *Buffer) Append(r Record) bool {
	b.total++
	if b.n < len(b.items) {
		b.items[(b.start+b.n)%len(b.items)] = r
		b.n++
		return false
	}
	b.items[b.start] = r
	b.start = (b.start + 1) % len(b.items)
	return true
}

func (b *Buffer) Len() int { return b.n }

func (b *Buffer) Cap() int { return len(b.items) }

// Total counts every record ever appended, evicted ones included.
func (b *Buffer) Total() uint64 { return b.total }

// Records returns a copy of the buffered records, oldest first.
func (b *Buffer) Records() []Record {
	return b.Tail(b.n)
}

// Tail returns a copy of the newest n records, oldest first.
func (b *Buffer) Tail(n int) []Record {
	if n > b.n {
		n = b.n
	}
	if n <= 0 {
		return nil
	}
	out := make([]Record, n)
	first := b.start + b.n - n
	for i := 0; i < n; i++ {
		out[i] = b.items[(first+i)%len(b.items)]
	}
	return out
}
