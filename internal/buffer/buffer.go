package buffer

// Buffer is an owned growable region of memory with two cursors: consumed marks the beginning
// of data that isn't processed yet, and filled marks the end of valid data. Appending data
// might compact the buffer (move the unconsumed region to the beginning) and grow it, but
// the unconsumed bytes are always kept intact and in order.
type Buffer struct {
	memory   []byte
	consumed int
	filled   int
	maxSize  int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data after the filled region. If the amount of unconsumed bytes together with
// the data exceeds the limit, the data is discarded and false is returned.
func (b *Buffer) Append(data []byte) (ok bool) {
	if len(data) == 0 {
		return true
	}

	if b.Len()+len(data) > b.maxSize {
		return false
	}

	if len(data) > len(b.memory)-b.filled {
		b.compactAndGrow(len(data))
	}

	b.filled += copy(b.memory[b.filled:], data)
	return true
}

// compactAndGrow ensures there's at least n bytes of free space after the filled region.
func (b *Buffer) compactAndGrow(n int) {
	if b.consumed > 0 {
		b.filled = copy(b.memory, b.memory[b.consumed:b.filled])
		b.consumed = 0
	}

	if n <= len(b.memory)-b.filled {
		return
	}

	newSize := len(b.memory) * 2
	if newSize-b.filled < n {
		newSize += n
	}

	if newSize > b.maxSize {
		// enough to fit, as the limit was already checked by the caller
		newSize = b.maxSize
	}

	memory := make([]byte, newSize)
	copy(memory, b.memory[:b.filled])
	b.memory = memory
}

// Unconsumed returns a view of the bytes that are not consumed yet. The view is valid only
// until the next Append or Clear.
func (b *Buffer) Unconsumed() []byte {
	return b.memory[b.consumed:b.filled]
}

// Consume marks n bytes of the unconsumed region as processed.
func (b *Buffer) Consume(n int) {
	if n > b.Len() {
		n = b.Len()
	}

	b.consumed += n
}

// Len returns a number of unconsumed bytes.
func (b *Buffer) Len() int {
	return b.filled - b.consumed
}

// Cap returns the size of the underlying memory.
func (b *Buffer) Cap() int {
	return len(b.memory)
}

// Clear resets the cursors, so the memory can be reused by the next message.
func (b *Buffer) Clear() {
	b.consumed = 0
	b.filled = 0
}
