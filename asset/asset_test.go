package asset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func frame(size int, fill byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}
	return data
}

func TestCacheFill(t *testing.T) {
	const slotBytes = 64

	blobs := [][]byte{
		deflate(t, frame(slotBytes, 0xAA)),
		deflate(t, frame(slotBytes, 0xBB)),
		deflate(t, frame(slotBytes-1, 0xCC)), // too short
		deflate(t, frame(slotBytes+1, 0xDD)), // too long
	}
	c := New(blobs, &Config{SlotBytes: slotBytes})

	if c.Slots() != len(blobs) {
		t.Fatalf("Slots: %d", c.Slots())
	}
	if c.SlotBytes() != slotBytes {
		t.Fatalf("SlotBytes: %d", c.SlotBytes())
	}

	if c.Slice(0) != nil {
		t.Error("slot 0 filled before Fill")
	}
	if !c.Fill(0) {
		t.Fatal("Fill(0) failed")
	}
	if got := c.Slice(0); !bytes.Equal(got, frame(slotBytes, 0xAA)) {
		t.Error("slot 0 content mismatch")
	}

	// Idempotent.
	if !c.Fill(0) {
		t.Error("second Fill(0) failed")
	}

	// Wrong decompressed sizes leave the slot empty.
	for _, i := range []int{2, 3} {
		if c.Fill(i) {
			t.Errorf("Fill(%d) succeeded on bad blob", i)
		}
		if c.Slice(i) != nil {
			t.Errorf("slot %d filled after bad blob", i)
		}
	}

	// Out of range.
	if c.Fill(-1) || c.Fill(len(blobs)) {
		t.Error("Fill accepted out-of-range index")
	}
	if c.Slice(-1) != nil || c.Slice(len(blobs)) != nil {
		t.Error("Slice accepted out-of-range index")
	}
}

func TestCacheFallback(t *testing.T) {
	// A bad blob forces callers onto the decompress-to-scratch path; the
	// scratch content can then be handed back to the arena with Put.
	const slotBytes = 32

	good := frame(slotBytes, 0x11)
	blobs := [][]byte{deflate(t, good[:slotBytes-4])}
	c := New(blobs, &Config{SlotBytes: slotBytes})

	if c.Fill(0) {
		t.Fatal("Fill succeeded on short blob")
	}

	scratch := frame(slotBytes, 0x22)
	if !c.Put(0, scratch) {
		t.Fatal("Put rejected valid scratch")
	}
	if got := c.Slice(0); !bytes.Equal(got, scratch) {
		t.Error("slot content differs from scratch")
	}

	// Filled slots are immutable.
	if c.Put(0, frame(slotBytes, 0x33)) {
		t.Error("Put overwrote a filled slot")
	}
	if c.Slice(0)[0] != 0x22 {
		t.Error("filled slot changed")
	}

	if c.Put(0, frame(slotBytes-1, 0x44)) {
		t.Error("Put accepted wrong-size data")
	}
}

func TestCacheDecompress(t *testing.T) {
	const slotBytes = 16

	c := New([][]byte{deflate(t, frame(slotBytes, 0x55)), {0x00, 0x01}}, &Config{SlotBytes: slotBytes})

	dst := make([]byte, slotBytes)
	if err := c.Decompress(0, dst); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dst, frame(slotBytes, 0x55)) {
		t.Error("decompressed content mismatch")
	}

	if err := c.Decompress(0, make([]byte, slotBytes-1)); !errors.Is(err, ErrSize) {
		t.Errorf("wrong dst size: %v", err)
	}
	if err := c.Decompress(5, dst); !errors.Is(err, ErrNoAsset) {
		t.Errorf("missing asset: %v", err)
	}
	if err := c.Decompress(1, dst); err == nil {
		t.Error("corrupt blob decompressed")
	}
}

func TestCacheBudget(t *testing.T) {
	const slotBytes = 100

	blobs := make([][]byte, 8)
	for i := range blobs {
		blobs[i] = deflate(t, frame(slotBytes, byte(i)))
	}

	// 8 slots do not fit in 450 bytes; halving lands on 4.
	c := New(blobs, &Config{SlotBytes: slotBytes, MaxBytes: 450})
	if c.Slots() != 4 {
		t.Fatalf("Slots: %d, want 4", c.Slots())
	}

	// Slots past the cap fail to fill but still decompress to scratch.
	if c.Fill(6) {
		t.Error("Fill succeeded past the arena cap")
	}
	dst := make([]byte, slotBytes)
	if err := c.Decompress(6, dst); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 6 {
		t.Error("scratch decompression content mismatch")
	}

	// Requested count is clamped to the supported maximum.
	many := make([][]byte, 12)
	for i := range many {
		many[i] = deflate(t, frame(slotBytes, 0))
	}
	if c := New(many, &Config{SlotBytes: slotBytes}); c.Slots() != 10 {
		t.Errorf("Slots: %d, want 10", c.Slots())
	}
}
