package usercopy

import "fmt"

// CheckBounds reports whether [srcva, srcva+n) lies inside an address space
// of size bytes. The end of the range must stay strictly below size.
func CheckBounds(srcva, n, size uint64) error {
	end := srcva + n
	if srcva >= size || end >= size || end < srcva {
		return fmt.Errorf("0x%x+0x%x with size 0x%x: %w",
			srcva, n, size, ErrOutOfRange)
	}

	return nil
}
