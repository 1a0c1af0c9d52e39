package scroll

// BlockState is the render state of one block of feed content.
type BlockState struct {
	ID        string
	Rendered  bool
	Streaming bool
}

// Content is a read-only view of the feed's blocks.
type Content interface {
	BlockStates() []BlockState
}

// NeedsDeferredRender reports whether content holds a finished block that
// has not been painted yet. Streaming blocks never count: they keep
// changing until their stream ends.
func NeedsDeferredRender(c Content) bool {
	if c == nil {
		return false
	}
	for _, b := range c.BlockStates() {
		if !b.Rendered && !b.Streaming {
			return true
		}
	}
	return false
}
