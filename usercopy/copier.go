// Package usercopy copies bytes from the virtual address space of a user
// process into kernel-owned buffers.
//
// A user address is never used to access memory directly. Every copy resolves
// the pages it touches through the page table of the process and reads only
// from the physical pages the translation returns.
//
// The page table of a process must not change while a copy from that process
// is in progress. The copier does not lock it. Callers that can unmap or move
// pages concurrently must hold their own address-space lock for the duration
// of the call.
package usercopy

import (
	"fmt"

	"github.com/sarchlab/ucopy/mem/vm"
)

// A Process provides the address-space view that a copy runs against.
type Process interface {
	// PageTable returns the translator of the process.
	PageTable() vm.Translator

	// Size returns the size of the address space. Valid user addresses are
	// below it.
	Size() uint64
}

// PhysicalMemory gives access to physical pages. It is implemented by
// memory.Storage.
type PhysicalMemory interface {
	Read(address uint64, length uint64) ([]byte, error)
}

// Space is a Process built from a translator and an address-space size.
type Space struct {
	Translator vm.Translator
	Limit      uint64
	PID        vm.PID
}

// NewSpace creates the address space of process pid, backed by table.
func NewSpace(table vm.PageTable, pid vm.PID, size uint64) *Space {
	return &Space{
		Translator: vm.NewProcessTranslator(table, pid),
		Limit:      size,
		PID:        pid,
	}
}

// PageTable returns the translator of the process.
func (s *Space) PageTable() vm.Translator {
	return s.Translator
}

// Size returns the size of the address space.
func (s *Space) Size() uint64 {
	return s.Limit
}

// ProcessID returns the PID of the address space.
func (s *Space) ProcessID() vm.PID {
	return s.PID
}

type pidGetter interface {
	ProcessID() vm.PID
}

// A Copier moves bytes from user address spaces into kernel buffers.
type Copier struct {
	HookableBase

	log2PageSize uint64
	physMem      PhysicalMemory
	stats        *Stats
}

// A Builder can build Copiers.
type Builder struct {
	log2PageSize uint64
	physMem      PhysicalMemory
	stats        *Stats
}

// MakeBuilder creates a builder with 4 KiB pages and the process-wide stats.
func MakeBuilder() Builder {
	return Builder{
		log2PageSize: 12,
		stats:        DefaultStats(),
	}
}

// WithLog2PageSize sets the page size that the copier walks with.
func (b Builder) WithLog2PageSize(log2PageSize uint64) Builder {
	b.log2PageSize = log2PageSize
	return b
}

// WithPhysicalMemory sets the physical memory that translated addresses
// refer to.
func (b Builder) WithPhysicalMemory(m PhysicalMemory) Builder {
	b.physMem = m
	return b
}

// WithStats sets the counters the copier updates.
func (b Builder) WithStats(s *Stats) Builder {
	b.stats = s
	return b
}

// Build creates a Copier.
func (b Builder) Build() *Copier {
	if b.physMem == nil {
		panic("physical memory is not set")
	}

	if b.log2PageSize == 0 || b.log2PageSize >= 64 {
		panic(fmt.Sprintf("invalid log2 page size %d", b.log2PageSize))
	}

	if b.stats == nil {
		b.stats = DefaultStats()
	}

	return &Copier{
		log2PageSize: b.log2PageSize,
		physMem:      b.physMem,
		stats:        b.stats,
	}
}

// PageSize returns the page size in bytes.
func (c *Copier) PageSize() uint64 {
	return 1 << c.log2PageSize
}

// PageRoundDown returns addr rounded down to its page boundary.
func (c *Copier) PageRoundDown(addr uint64) uint64 {
	return addr &^ (c.PageSize() - 1)
}

// Stats returns the counters the copier updates.
func (c *Copier) Stats() *Stats {
	return c.stats
}

// readPhys fills dst from the page at physical address pa0, starting offset
// bytes into the page.
//
// pa0 must come from a successful translation of a page that is still mapped,
// and the access must not leave that page. A failure here means the page
// table points at memory that does not exist, which is a kernel bug.
func (c *Copier) readPhys(dst []byte, pa0, offset uint64) {
	n := uint64(len(dst))
	if offset+n > c.PageSize() {
		panic(fmt.Sprintf("physical access 0x%x+0x%x+0x%x crosses a page",
			pa0, offset, n))
	}

	data, err := c.physMem.Read(pa0+offset, n)
	if err != nil {
		panic(fmt.Sprintf("reading physical page 0x%x: %v", pa0, err))
	}

	copy(dst, data)
}

func (c *Copier) report(
	pos *HookPos,
	kind string,
	p Process,
	srcva, length, copied uint64,
	err error,
) {
	if c.NumHooks() == 0 {
		return
	}

	record := CopyRecord{
		Kind:   kind,
		SrcVA:  srcva,
		Length: length,
		Copied: copied,
		Err:    err,
	}

	if g, ok := p.(pidGetter); ok {
		record.PID = uint32(g.ProcessID())
	}

	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   record,
	})
}
