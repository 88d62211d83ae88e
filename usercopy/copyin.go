package usercopy

import "fmt"

// CopyIn copies n bytes starting at user virtual address srcva of process p
// into dst.
//
// The range must lie inside the address space of p. The copy walks the range
// one page at a time and stops at the first unmapped page. Bytes already
// copied from earlier pages stay in dst; callers must not trust dst after a
// failure. dst must be at least n bytes long.
func (c *Copier) CopyIn(p Process, dst []byte, srcva, n uint64) error {
	c.stats.countCopyIn()

	copied, err := c.copyIn(p, dst, srcva, n)
	c.report(HookPosCopyIn, "copyin", p, srcva, n, copied, err)

	return err
}

func (c *Copier) copyIn(
	p Process,
	dst []byte,
	srcva, n uint64,
) (uint64, error) {
	if err := CheckBounds(srcva, n, p.Size()); err != nil {
		return 0, err
	}

	if uint64(len(dst)) < n {
		panic(fmt.Sprintf("destination of %d bytes is too small for %d",
			len(dst), n))
	}

	pageTable := p.PageTable()
	pageSize := c.PageSize()
	va := srcva
	remaining := n
	copied := uint64(0)

	for remaining > 0 {
		va0 := c.PageRoundDown(va)

		pa0, ok := pageTable.Translate(va0)
		if !ok {
			return copied, fmt.Errorf("copyin at 0x%x: %w", va0, ErrUnmappedPage)
		}

		offset := va - va0
		chunk := min(pageSize-offset, remaining)

		c.readPhys(dst[copied:copied+chunk], pa0, offset)

		remaining -= chunk
		copied += chunk
		va = va0 + pageSize
	}

	if copied != n {
		panic("copyin finished with bytes remaining")
	}

	return copied, nil
}

// CopyInString copies a NUL-terminated string starting at user virtual
// address srcva of process p into dst, reading at most maxLen bytes.
//
// On success dst holds the string and its terminator. Running out of the
// budget before a NUL is found is a failure even though maxLen bytes have been
// written to dst. dst must be at least maxLen bytes long.
func (c *Copier) CopyInString(p Process, dst []byte, srcva, maxLen uint64) error {
	c.stats.countCopyInStr()

	copied, err := c.copyInString(p, dst, srcva, maxLen)
	c.report(HookPosCopyInString, "copyinstr", p, srcva, maxLen, copied, err)

	return err
}

func (c *Copier) copyInString(
	p Process,
	dst []byte,
	srcva, maxLen uint64,
) (uint64, error) {
	if uint64(len(dst)) < maxLen {
		panic(fmt.Sprintf("destination of %d bytes is too small for %d",
			len(dst), maxLen))
	}

	pageTable := p.PageTable()
	pageSize := c.PageSize()
	va := srcva
	copied := uint64(0)

	for maxLen > 0 {
		va0 := c.PageRoundDown(va)

		pa0, ok := pageTable.Translate(va0)
		if !ok {
			return copied, fmt.Errorf("copyinstr at 0x%x: %w",
				va0, ErrUnmappedPage)
		}

		offset := va - va0
		chunk := make([]byte, min(pageSize-offset, maxLen))
		c.readPhys(chunk, pa0, offset)

		for _, b := range chunk {
			dst[copied] = b
			if b == 0 {
				return copied + 1, nil
			}

			copied++
			maxLen--
		}

		va = va0 + pageSize
	}

	return copied, fmt.Errorf("copyinstr at 0x%x: %w", srcva, ErrUnterminated)
}
