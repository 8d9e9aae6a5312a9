package host

import "image"

type slotKey struct {
	slot int
	size image.Point
}

type cachedTexture[T any] struct {
	tex  T
	used bool
}

// textureCache hands out one texture per additive draw of a frame, keyed by
// the draw's position in the frame and its size. Textures not used during a
// frame are destroyed when the frame ends.
type textureCache[T any] struct {
	create  func(size image.Point) (T, error)
	destroy func(T) error

	entries map[slotKey]*cachedTexture[T]
	next    int
}

func newTextureCache[T any](create func(image.Point) (T, error), destroy func(T) error) *textureCache[T] {
	return &textureCache[T]{
		create:  create,
		destroy: destroy,
		entries: make(map[slotKey]*cachedTexture[T]),
	}
}

// beginFrame restarts slot numbering.
func (c *textureCache[T]) beginFrame() {
	c.next = 0
}

// acquire returns the texture for the next draw slot at the given size.
func (c *textureCache[T]) acquire(size image.Point) (T, error) {
	key := slotKey{slot: c.next, size: size}
	c.next++
	if e, ok := c.entries[key]; ok {
		e.used = true
		return e.tex, nil
	}
	tex, err := c.create(size)
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[key] = &cachedTexture[T]{tex: tex, used: true}
	return tex, nil
}

// endFrame destroys textures no draw asked for since the last endFrame and
// returns the first destroy error.
func (c *textureCache[T]) endFrame() error {
	var first error
	for key, e := range c.entries {
		if e.used {
			e.used = false
			continue
		}
		if err := c.destroy(e.tex); err != nil && first == nil {
			first = err
		}
		delete(c.entries, key)
	}
	c.next = 0
	return first
}

// release destroys every cached texture and returns the first destroy error.
func (c *textureCache[T]) release() error {
	var first error
	for key, e := range c.entries {
		if err := c.destroy(e.tex); err != nil && first == nil {
			first = err
		}
		delete(c.entries, key)
	}
	c.next = 0
	return first
}

func (c *textureCache[T]) len() int {
	return len(c.entries)
}
