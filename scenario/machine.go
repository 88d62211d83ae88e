package scenario

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ucopy/mem/vm"
	"github.com/sarchlab/ucopy/memory"
	"github.com/sarchlab/ucopy/usercopy"
)

// MaxStringBudget is the largest budget a copyinstr line may ask for.
const MaxStringBudget = 1 << 20

// A Machine is a set of processes sharing one page table and one physical
// memory, together with the copier that reads from them.
type Machine struct {
	PageTable vm.PageTable
	Storage   *memory.Storage
	Copier    *usercopy.Copier

	spaces  map[vm.PID]*usercopy.Space
	current vm.PID
}

// A Result is the outcome of one copy issued by a script.
type Result struct {
	Line  int
	Kind  OpKind
	PID   vm.PID
	SrcVA uint64
	Len   uint64
	Data  []byte
	Err   error
}

// NewMachine creates a machine. Process 1 is current until a pid line says
// otherwise.
func NewMachine(log2PageSize, capacity uint64, stats *usercopy.Stats) *Machine {
	m := &Machine{
		PageTable: vm.NewPageTable(log2PageSize),
		Storage:   memory.NewStorageWithUnitSize(capacity, 1<<log2PageSize),
		spaces:    make(map[vm.PID]*usercopy.Space),
		current:   1,
	}

	m.Copier = usercopy.MakeBuilder().
		WithLog2PageSize(log2PageSize).
		WithPhysicalMemory(m.Storage).
		WithStats(stats).
		Build()

	return m
}

// Space returns the address space of a process, creating an empty one if
// needed.
func (m *Machine) Space(pid vm.PID) *usercopy.Space {
	space, found := m.spaces[pid]
	if !found {
		space = usercopy.NewSpace(m.PageTable, pid, 0)
		m.spaces[pid] = space
	}

	return space
}

// Spaces returns all the address spaces created so far.
func (m *Machine) Spaces() []*usercopy.Space {
	spaces := make([]*usercopy.Space, 0, len(m.spaces))
	for _, s := range m.spaces {
		spaces = append(spaces, s)
	}

	return spaces
}

// Run executes a script. Copy failures are reported in the results; setup
// errors stop the run.
func (m *Machine) Run(script *Script) ([]Result, error) {
	var results []Result

	for _, op := range script.Ops {
		switch op.Kind {
		case OpPID:
			m.current = vm.PID(op.Value)
			m.Space(m.current)
		case OpSize:
			m.Space(m.current).Limit = op.Value
		case OpMap, OpInvalid:
			if err := m.mapPage(op); err != nil {
				return results, fmt.Errorf("line %d: %w", op.Line, err)
			}
		case OpWrite:
			if err := m.writeUser(op.Addr, op.Data); err != nil {
				return results, fmt.Errorf("line %d: %w", op.Line, err)
			}
		case OpCopyInStr:
			if op.Value > MaxStringBudget {
				return results, fmt.Errorf("line %d: budget 0x%x is too large",
					op.Line, op.Value)
			}

			results = append(results, m.copy(op))
		case OpCopyIn:
			results = append(results, m.copy(op))
		}
	}

	return results, nil
}

func (m *Machine) mapPage(op Op) error {
	pageSize := m.Copier.PageSize()
	if op.Addr%pageSize != 0 || op.Value%pageSize != 0 {
		return fmt.Errorf("mapping 0x%x to 0x%x is not page-aligned",
			op.Addr, op.Value)
	}

	if op.Value > m.Storage.Capacity() ||
		m.Storage.Capacity()-op.Value < pageSize {
		return fmt.Errorf("physical page 0x%x is beyond memory", op.Value)
	}

	if _, found := m.PageTable.Find(m.current, op.Addr); found {
		return fmt.Errorf("page 0x%x is already mapped", op.Addr)
	}

	m.Space(m.current)
	m.PageTable.Insert(vm.Page{
		PID:   m.current,
		VAddr: op.Addr,
		PAddr: op.Value,
		Valid: op.Kind == OpMap,
	})

	return nil
}

// writeUser stores data through the page table of the current process, the
// way a loader would fill user pages.
func (m *Machine) writeUser(vAddr uint64, data []byte) error {
	pageSize := m.Copier.PageSize()

	for len(data) > 0 {
		va0 := m.Copier.PageRoundDown(vAddr)

		page, found := m.PageTable.Find(m.current, va0)
		if !found {
			return fmt.Errorf("write to unmapped page 0x%x", va0)
		}

		n := min(uint64(len(data)), pageSize-(vAddr-va0))
		if err := m.Storage.Write(page.PAddr+vAddr-va0, data[:n]); err != nil {
			return err
		}

		data = data[n:]
		vAddr += n
	}

	return nil
}

func (m *Machine) copy(op Op) Result {
	space := m.Space(m.current)
	res := Result{
		Line:  op.Line,
		Kind:  op.Kind,
		PID:   m.current,
		SrcVA: op.Addr,
		Len:   op.Value,
	}

	if op.Kind == OpCopyIn {
		// Lengths that do not fit in the space fail the bounds check before
		// the destination is touched.
		dst := make([]byte, min(op.Value, space.Size()))
		res.Err = m.Copier.CopyIn(space, dst, op.Addr, op.Value)
		if res.Err == nil {
			res.Data = dst
		}

		return res
	}

	dst := make([]byte, op.Value)
	res.Err = m.Copier.CopyInString(space, dst, op.Addr, op.Value)
	if res.Err == nil {
		for i, b := range dst {
			if b == 0 {
				res.Data = dst[:i]
				break
			}
		}
	}

	return res
}

// Cause names the reason a copy failed.
func Cause(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, usercopy.ErrOutOfRange):
		return "out of range"
	case errors.Is(err, usercopy.ErrUnmappedPage):
		return "unmapped page"
	case errors.Is(err, usercopy.ErrUnterminated):
		return "unterminated"
	default:
		return "fault"
	}
}
