//go:build linux || darwin || freebsd

// Package arena is a bump allocator over anonymous memory that describes
// itself to Memcheck as a memory pool.
//
// Every allocation is surrounded by redzones that stay unaddressable, and
// Reset poisons the whole mapping again, so under Memcheck an overrun or a
// use after Reset is reported at the faulting access. Natively the requests
// cost a few instructions each.
package arena

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/coral-mesh/vgreq/pkg/valgrind/memcheck"
)

const (
	// DefaultSize is the mapping size used when Config.Size is zero.
	DefaultSize = 1 << 20
	// DefaultRedzone is the redzone used when Config.Redzone is zero.
	DefaultRedzone = 16
	// DefaultAlign is the alignment used when Config.Align is zero.
	DefaultAlign = 16
)

var (
	// ErrExhausted is returned when an allocation does not fit in the
	// remaining space.
	ErrExhausted = errors.New("arena exhausted")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("arena closed")
)

var munmap = unix.Munmap

// Config describes an arena.
type Config struct {
	// Size is the mapping size in bytes, rounded up to the page size.
	Size int
	// Redzone is the number of unaddressable bytes kept on each side of an
	// allocation. Negative disables redzones.
	Redzone int
	// Align is the alignment of every allocation. Must be a power of two.
	Align int
	// Memcheck issues the pool requests. Nil selects the native client.
	Memcheck *memcheck.Client
}

func (c Config) withDefaults() Config {
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.Redzone == 0 {
		c.Redzone = DefaultRedzone
	} else if c.Redzone < 0 {
		c.Redzone = 0
	}
	if c.Align == 0 {
		c.Align = DefaultAlign
	}
	if c.Memcheck == nil {
		c.Memcheck = memcheck.Default()
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Size < 0 {
		return fmt.Errorf("invalid arena size %d", c.Size)
	}
	if c.Align < 1 || c.Align&(c.Align-1) != 0 {
		return fmt.Errorf("invalid arena alignment %d: must be a power of two", c.Align)
	}
	if 2*c.Redzone >= c.Size {
		return fmt.Errorf("redzone %d leaves no room in a %d byte arena", c.Redzone, c.Size)
	}
	return nil
}

// Stats is a snapshot of arena usage.
type Stats struct {
	Capacity int `json:"capacity"`
	Used     int `json:"used"`
	Allocs   int `json:"allocs"`
	Resets   int `json:"resets"`
}

// Arena hands out zeroed blocks from one mapping. It is safe for concurrent
// use. Blocks stay valid until Reset or Close.
type Arena struct {
	mc      *memcheck.Client
	redzone uintptr
	align   uintptr
	logger  zerolog.Logger

	mu     sync.Mutex
	mem    []byte
	off    uintptr
	stats  Stats
	closed bool
}

// New maps a fresh arena and registers it with Memcheck.
func New(cfg Config, logger zerolog.Logger) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	page := unix.Getpagesize()
	size := (cfg.Size + page - 1) &^ (page - 1)

	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("failed to map arena: %w", err)
	}

	a := &Arena{
		mc:      cfg.Memcheck,
		redzone: uintptr(cfg.Redzone),
		align:   uintptr(cfg.Align),
		logger:  logger.With().Str("component", "arena").Logger(),
		mem:     mem,
		stats:   Stats{Capacity: size},
	}

	a.mc.CreateMempool(a.pool(), a.redzone, true)
	a.mc.MakeMemNoAccess(a.base(), uintptr(size))

	a.logger.Debug().
		Int("size", size).
		Uint64("redzone", uint64(a.redzone)).
		Uint64("align", uint64(a.align)).
		Msg("Arena mapped")

	return a, nil
}

func (a *Arena) base() unsafe.Pointer {
	return unsafe.Pointer(&a.mem[0])
}

// pool anchors the Memcheck pool at the start of the mapping.
func (a *Arena) pool() memcheck.Pool {
	return memcheck.Pool(uintptr(a.base()))
}

// Alloc returns n zeroed bytes. The slice capacity is n, so appending to it
// reallocates on the Go heap instead of running into the redzone.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid allocation size %d", n)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	start := (a.off + a.redzone + a.align - 1) &^ (a.align - 1)
	end := start + uintptr(n)
	if end+a.redzone > uintptr(len(a.mem)) {
		a.logger.Debug().Int("size", n).Int("used", int(a.off)).Msg("Arena exhausted")
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d used", ErrExhausted, n, a.off, len(a.mem))
	}

	a.off = end + a.redzone
	a.stats.Allocs++
	a.stats.Used = int(a.off)

	block := a.mem[start:end:end]
	a.mc.MempoolAlloc(a.pool(), unsafe.Pointer(&block[0]), uintptr(n))
	return block, nil
}

// Reset releases every block at once. Earlier blocks must not be used
// afterwards; under Memcheck any access to them is reported.
func (a *Arena) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	a.mc.MempoolTrim(a.pool(), a.base(), 0)
	// Clearing needs the bytes addressable; poison them again afterwards.
	a.mc.MakeMemUndefined(a.base(), a.off)
	clear(a.mem[:a.off])
	a.mc.MakeMemNoAccess(a.base(), uintptr(len(a.mem)))

	a.logger.Debug().Int("released", int(a.off)).Int("allocs", a.stats.Allocs).Msg("Arena reset")

	a.off = 0
	a.stats.Used = 0
	a.stats.Resets++
	return nil
}

// Stats returns current usage.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Close unmaps the arena and destroys the pool. If the unmap fails the arena
// stays open and usable, and Close may be retried.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	pool := a.pool()
	if err := munmap(a.mem); err != nil {
		return fmt.Errorf("failed to unmap arena: %w", err)
	}
	a.mc.DestroyMempool(pool)

	a.closed = true
	a.mem = nil
	a.logger.Debug().Int("allocs", a.stats.Allocs).Msg("Arena closed")
	return nil
}
