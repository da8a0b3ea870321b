// Package cord implements a block-based append-only byte builder, used by
// the planner and executor to build plan descriptions and error messages
// without repeated reallocation on every append.
package cord

import "strconv"

const defaultBlockSize = 1024
const minBlockSize = 64

// Cord is a sequence of fixed-size blocks. Appends fill the current block
// and allocate a new one only when it is full, avoiding the repeated
// doubling-and-copying a single growing []byte would incur under many small
// appends.
type Cord struct {
	blocks    [][]byte
	blockSize int
	totalLen  int
}

// New creates an empty Cord with the default block size.
func New() *Cord {
	return WithBlockSize(defaultBlockSize)
}

// WithBlockSize creates an empty Cord with a specific block size, clamped to
// a sane minimum.
func WithBlockSize(blockSize int) *Cord {
	if blockSize < minBlockSize {
		blockSize = minBlockSize
	}
	return &Cord{blockSize: blockSize}
}

// Len returns the total number of bytes written.
func (c *Cord) Len() int { return c.totalLen }

// IsEmpty reports whether the Cord has had nothing written to it.
func (c *Cord) IsEmpty() bool { return c.totalLen == 0 }

// AppendString appends a string's bytes.
func (c *Cord) AppendString(s string) *Cord { return c.writeAll([]byte(s)) }

// AppendBytes appends a byte slice; the Cord copies what it needs rather
// than retaining the caller's backing array.
func (c *Cord) AppendBytes(b []byte) *Cord { return c.writeAll(b) }

func (c *Cord) writeAll(data []byte) *Cord {
	for len(data) > 0 {
		if len(c.blocks) == 0 || len(c.blocks[len(c.blocks)-1]) == c.blockSize {
			c.blocks = append(c.blocks, make([]byte, 0, c.blockSize))
		}
		last := &c.blocks[len(c.blocks)-1]
		spaceLeft := c.blockSize - len(*last)
		toWrite := spaceLeft
		if toWrite > len(data) {
			toWrite = len(data)
		}
		*last = append(*last, data[:toWrite]...)
		data = data[toWrite:]
		c.totalLen += toWrite
	}
	return c
}

// Flatten copies every block into one contiguous byte slice.
func (c *Cord) Flatten() []byte {
	out := make([]byte, 0, c.totalLen)
	for _, b := range c.blocks {
		out = append(out, b...)
	}
	return out
}

// String implements fmt.Stringer by flattening the Cord.
func (c *Cord) String() string {
	return string(c.Flatten())
}

// Clear discards all blocks, resetting the Cord to empty.
func (c *Cord) Clear() {
	c.blocks = nil
	c.totalLen = 0
}

// ApplyTo calls f with each block in order, stopping early if f returns
// false.
func (c *Cord) ApplyTo(f func([]byte) bool) bool {
	for _, b := range c.blocks {
		if !f(b) {
			return false
		}
	}
	return true
}

// WriteInt appends the base-10 representation of an int64.
func (c *Cord) WriteInt(v int64) *Cord { return c.AppendString(strconv.FormatInt(v, 10)) }

// WriteUint appends the base-10 representation of a uint64.
func (c *Cord) WriteUint(v uint64) *Cord { return c.AppendString(strconv.FormatUint(v, 10)) }

// WriteFloat appends the shortest round-trippable representation of a
// float64.
func (c *Cord) WriteFloat(v float64) *Cord {
	return c.AppendString(strconv.FormatFloat(v, 'g', -1, 64))
}

// WriteBool appends "true" or "false".
func (c *Cord) WriteBool(v bool) *Cord { return c.AppendString(strconv.FormatBool(v)) }

// WriteByte appends a single byte.
func (c *Cord) WriteByte(v byte) *Cord { return c.writeAll([]byte{v}) }

// WriteRune appends a single rune's UTF-8 encoding.
func (c *Cord) WriteRune(v rune) *Cord { return c.AppendString(string(v)) }
