package vm

import "fmt"

// A Translator resolves a page-aligned virtual address to the base address of
// the physical page that backs it.
//
// The bool return value reports whether the page is mapped. Physical address
// zero is a legal mapping; callers must never treat it as "unmapped".
type Translator interface {
	Translate(vAddr uint64) (pAddr uint64, ok bool)
}

// ProcessTranslator translates the addresses of one process using a shared
// PageTable.
type ProcessTranslator struct {
	Table PageTable
	PID   PID
}

// NewProcessTranslator creates a translator that views table through the
// address space of process pid.
func NewProcessTranslator(table PageTable, pid PID) ProcessTranslator {
	return ProcessTranslator{Table: table, PID: pid}
}

// Translate looks up the page that starts at vAddr. Pages that exist but are
// marked invalid are reported as unmapped.
func (t ProcessTranslator) Translate(vAddr uint64) (uint64, bool) {
	log2PageSize := t.Table.GetLog2PageSize()
	if vAddr&(1<<log2PageSize-1) != 0 {
		panic(fmt.Sprintf("translating unaligned address 0x%x", vAddr))
	}

	page, found := t.Table.Find(t.PID, vAddr)
	if !found || !page.Valid {
		return 0, false
	}

	return page.PAddr, true
}
