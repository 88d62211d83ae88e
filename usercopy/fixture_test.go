package usercopy

import (
	"github.com/sarchlab/ucopy/mem/vm"
	"github.com/sarchlab/ucopy/memory"
)

const testPageSize = 4096

// userFixture is a single process whose pages are backed by a Storage.
type userFixture struct {
	pageTable vm.PageTable
	storage   *memory.Storage
	space     *Space
	stats     *Stats
	copier    *Copier
}

func newUserFixture(size uint64) *userFixture {
	f := &userFixture{
		pageTable: vm.NewPageTable(12),
		storage:   memory.NewStorage(1 << 20),
		stats:     &Stats{},
	}

	f.space = NewSpace(f.pageTable, 1, size)
	f.copier = MakeBuilder().
		WithPhysicalMemory(f.storage).
		WithStats(f.stats).
		Build()

	return f
}

func (f *userFixture) mapPage(vAddr, pAddr uint64) {
	f.pageTable.Insert(vm.Page{
		PID:   1,
		VAddr: vAddr,
		PAddr: pAddr,
		Valid: true,
	})
}

// writeUser stores data at a user address. Every page touched must be
// mapped.
func (f *userFixture) writeUser(vAddr uint64, data []byte) {
	for len(data) > 0 {
		va0 := vAddr &^ (testPageSize - 1)
		page, found := f.pageTable.Find(1, va0)
		if !found {
			panic("writing to an unmapped test page")
		}

		n := min(uint64(len(data)), testPageSize-(vAddr-va0))
		err := f.storage.Write(page.PAddr+vAddr-va0, data[:n])
		if err != nil {
			panic(err)
		}

		data = data[n:]
		vAddr += n
	}
}
