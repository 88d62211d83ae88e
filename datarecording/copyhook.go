package datarecording

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/ucopy/usercopy"
)

// CopyTableName is the table that CopyHook writes to.
const CopyTableName = "copy_calls"

// CopyEntry is one row of the copy table. Addresses and requested lengths
// are stored as hex strings since SQLite integers are signed.
type CopyEntry struct {
	ID     string
	Kind   string
	PID    uint32
	SrcVA  string
	Length string
	Copied uint64
	Failed bool
	Error  string
}

// CopyHook records every copy call it is invoked for.
type CopyHook struct {
	recorder DataRecorder
}

// NewCopyHook creates a CopyHook and the table it writes to.
func NewCopyHook(recorder DataRecorder) *CopyHook {
	recorder.CreateTable(CopyTableName, CopyEntry{})

	return &CopyHook{recorder: recorder}
}

// Func inserts a row describing the copy call.
func (h *CopyHook) Func(ctx usercopy.HookCtx) {
	record := ctx.Item

	entry := CopyEntry{
		ID:     xid.New().String(),
		Kind:   record.Kind,
		PID:    record.PID,
		SrcVA:  fmt.Sprintf("0x%x", record.SrcVA),
		Length: fmt.Sprintf("0x%x", record.Length),
		Copied: record.Copied,
	}

	if record.Err != nil {
		entry.Failed = true
		entry.Error = record.Err.Error()
	}

	h.recorder.InsertData(CopyTableName, entry)
}
