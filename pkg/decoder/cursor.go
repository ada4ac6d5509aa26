package decoder

// Cursor is a read position over caller-owned input. ProcessInput advances
// it past the bytes it consumes. The decoder never keeps a reference to the
// underlying slice after a call returns.
type Cursor struct {
	data     []byte
	consumed int
}

// NewCursor returns a cursor at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Bytes returns the unconsumed input.
func (c *Cursor) Bytes() []byte {
	return c.data
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	return len(c.data)
}

// Consumed returns the total number of bytes consumed through this cursor.
func (c *Cursor) Consumed() int {
	return c.consumed
}

// Refill points the cursor at the next input. Any bytes still unconsumed
// must be repeated at the start of data.
func (c *Cursor) Refill(data []byte) {
	c.data = data
}

func (c *Cursor) advance(n int) {
	c.data = c.data[n:]
	c.consumed += n
}
