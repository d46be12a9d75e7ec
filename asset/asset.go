// Package asset caches decompressed full-frame images in a fixed arena so
// UI transitions can blit them without re-inflating the compressed blobs
// every time.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

var (
	// ErrNoAsset is returned for an asset index with no compressed blob.
	ErrNoAsset = errors.New("asset: no such asset")

	// ErrSize is returned when a blob does not decompress to exactly one
	// slot of pixel data.
	ErrSize = errors.New("asset: decompressed size mismatch")
)

// Config is the arena configuration.
type Config struct {
	// SlotBytes is the exact decompressed size of every asset. Defaults
	// to a full 466x466 16-bit frame.
	SlotBytes int

	// Slots is the number of arena slots to allocate. Defaults to one per
	// blob, capped at 10.
	Slots int

	// MaxBytes caps the arena allocation. When the requested slot count
	// does not fit, the count is halved until it does. Zero means no cap.
	MaxBytes int
}

const (
	defaultSlotBytes = 466 * 466 * 2
	maxSlots         = 10
)

// Cache is a bounded arena of lazily decompressed images. Slot i holds the
// decompressed form of blob i. Filled slots are immutable; there is no
// eviction.
type Cache struct {
	blobs     [][]byte
	arena     []byte
	filled    []bool
	slotBytes int
}

// New builds an arena over the given compressed blobs. Fewer slots than
// blobs is allowed; assets past the last slot can still be inflated through
// Decompress.
func New(blobs [][]byte, config *Config) *Cache {
	if config == nil {
		config = &Config{}
	}
	slotBytes := config.SlotBytes
	if slotBytes <= 0 {
		slotBytes = defaultSlotBytes
	}
	slots := config.Slots
	if slots <= 0 {
		slots = len(blobs)
	}
	if slots > maxSlots {
		slots = maxSlots
	}
	if config.MaxBytes > 0 {
		for slots > 0 && slots*slotBytes > config.MaxBytes {
			slots /= 2
		}
	}

	return &Cache{
		blobs:     blobs,
		arena:     make([]byte, slots*slotBytes),
		filled:    make([]bool, slots),
		slotBytes: slotBytes,
	}
}

// Slots returns the number of allocated slots, which may be less than the
// number of assets.
func (c *Cache) Slots() int { return len(c.filled) }

// SlotBytes returns the exact decompressed size of one asset.
func (c *Cache) SlotBytes() int { return c.slotBytes }

func (c *Cache) slot(i int) []byte {
	return c.arena[i*c.slotBytes : (i+1)*c.slotBytes]
}

// Fill decompresses asset i into its slot and reports whether the slot
// holds valid data afterwards. Already-filled slots return true without
// work. Indexes without a slot or blob, and blobs that fail to inflate to
// the exact slot size, return false and leave the slot empty.
func (c *Cache) Fill(i int) bool {
	if i < 0 || i >= len(c.filled) || i >= len(c.blobs) {
		return false
	}
	if c.filled[i] {
		return true
	}
	if err := c.Decompress(i, c.slot(i)); err != nil {
		return false
	}
	c.filled[i] = true
	return true
}

// Slice returns a read-only view of slot i, or nil when the slot is empty.
func (c *Cache) Slice(i int) []byte {
	if i < 0 || i >= len(c.filled) || !c.filled[i] {
		return nil
	}
	return c.slot(i)
}

// Put stores caller-inflated data into an empty slot and reports whether it
// was taken. data must be exactly one slot long; filled slots are never
// overwritten.
func (c *Cache) Put(i int, data []byte) bool {
	if i < 0 || i >= len(c.filled) || c.filled[i] || len(data) != c.slotBytes {
		return false
	}
	copy(c.slot(i), data)
	c.filled[i] = true
	return true
}

// Decompress inflates asset i into dst, bypassing the arena. dst must be
// exactly one slot long; a blob that inflates to any other size is
// rejected.
func (c *Cache) Decompress(i int, dst []byte) error {
	if i < 0 || i >= len(c.blobs) {
		return ErrNoAsset
	}
	if len(dst) != c.slotBytes {
		return ErrSize
	}

	r, err := zlib.NewReader(bytes.NewReader(c.blobs[i]))
	if err != nil {
		return fmt.Errorf("asset %d: %w", i, err)
	}
	defer r.Close()

	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("asset %d: %w: %v", i, ErrSize, err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return fmt.Errorf("asset %d: %w: stream too long", i, ErrSize)
	}
	return nil
}
