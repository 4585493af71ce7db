package memcheck

import (
	"unsafe"

	"github.com/coral-mesh/vgreq/pkg/valgrind/request"
)

// MallocLikeBlock tells Memcheck that a custom allocator handed out
// [addr, addr+size) with redzone bytes of padding on each side.
func (c *Client) MallocLikeBlock(addr unsafe.Pointer, size, redzone uintptr, zeroed bool) {
	c.d.CallPinned(mallocLikeBlock, request.Pins(addr), request.Addr(addr), size, redzone, request.Bool(zeroed))
}

// ResizeInPlaceBlock tells Memcheck that a block grew or shrank without
// moving.
func (c *Client) ResizeInPlaceBlock(addr unsafe.Pointer, oldSize, newSize, redzone uintptr) {
	c.d.CallPinned(resizeInPlaceBlock, request.Pins(addr), request.Addr(addr), oldSize, newSize, redzone)
}

// FreeLikeBlock tells Memcheck that the block at addr was released.
func (c *Client) FreeLikeBlock(addr unsafe.Pointer, redzone uintptr) {
	c.d.CallPinned(freeLikeBlock, request.Pins(addr), request.Addr(addr), redzone)
}

// Pool identifies a memory pool by its anchor address, conventionally the
// address of the allocator's own bookkeeping.
type Pool uintptr

// CreateMempool registers a pool whose chunks carry redzone bytes of padding.
func (c *Client) CreateMempool(pool Pool, redzone uintptr, zeroed bool) {
	c.d.Call(createMempool, request.Word(pool), redzone, request.Bool(zeroed))
}

// DestroyMempool forgets pool and every chunk in it.
func (c *Client) DestroyMempool(pool Pool) {
	c.d.Call(destroyMempool, request.Word(pool))
}

// MempoolAlloc records a chunk [addr, addr+size) allocated from pool.
func (c *Client) MempoolAlloc(pool Pool, addr unsafe.Pointer, size uintptr) {
	c.d.CallPinned(mempoolAlloc, request.Pins(addr), request.Word(pool), request.Addr(addr), size)
}

// MempoolFree records that the chunk at addr went back to pool.
func (c *Client) MempoolFree(pool Pool, addr unsafe.Pointer) {
	c.d.CallPinned(mempoolFree, request.Pins(addr), request.Word(pool), request.Addr(addr))
}

// MempoolTrim drops every chunk of pool outside [addr, addr+size).
func (c *Client) MempoolTrim(pool Pool, addr unsafe.Pointer, size uintptr) {
	c.d.CallPinned(mempoolTrim, request.Pins(addr), request.Word(pool), request.Addr(addr), size)
}

// MoveMempool re-anchors pool from one address to another.
func (c *Client) MoveMempool(from, to Pool) {
	c.d.Call(moveMempool, request.Word(from), request.Word(to))
}

// MempoolChange records that the chunk at from now lives at to with the given
// size.
func (c *Client) MempoolChange(pool Pool, from, to unsafe.Pointer, size uintptr) {
	c.d.CallPinned(mempoolChange, request.Pins(from, to), request.Word(pool), request.Addr(from), request.Addr(to), size)
}

// MempoolExists reports whether pool is registered. It is false when not
// running under Valgrind.
func (c *Client) MempoolExists(pool Pool) bool {
	return c.d.Call(mempoolExists, request.Word(pool)).Bool()
}
