// Package scenario drives the copy routines from a small text script. A
// script sets up the address spaces of one or more processes, fills their
// pages, and then issues copies.
//
//	# comments start with a hash
//	pid 1
//	size 0x8000
//	map 0x1000 0x3000
//	invalid 0x2000 0x4000
//	write 0x1000 "hello\x00"
//	write 0x1ffc hex:deadbeef
//	copyin 0x1000 6
//	copyinstr 0x1000 16
package scenario

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// OpKind is the kind of a script line.
type OpKind string

// The kinds of lines a script may contain.
const (
	OpPID       OpKind = "pid"
	OpSize      OpKind = "size"
	OpMap       OpKind = "map"
	OpInvalid   OpKind = "invalid"
	OpWrite     OpKind = "write"
	OpCopyIn    OpKind = "copyin"
	OpCopyInStr OpKind = "copyinstr"
)

// An Op is one parsed line of a script.
type Op struct {
	Line  int
	Kind  OpKind
	Addr  uint64
	Value uint64
	Data  []byte
}

// A Script is a parsed scenario.
type Script struct {
	Ops []Op
}

// Parse reads a script.
func Parse(r io.Reader) (*Script, error) {
	script := &Script{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		op, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		op.Line = lineNo
		script.Ops = append(script.Ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return script, nil
}

func parseLine(line string) (Op, error) {
	kind, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	op := Op{Kind: OpKind(kind)}

	switch op.Kind {
	case OpPID, OpSize:
		v, err := parseNumber(rest)
		if err == nil && op.Kind == OpPID && v > math.MaxUint32 {
			return op, fmt.Errorf("pid %d does not fit in 32 bits", v)
		}

		op.Value = v

		return op, err
	case OpMap, OpInvalid, OpCopyIn, OpCopyInStr:
		a, b, found := strings.Cut(rest, " ")
		if !found {
			return op, fmt.Errorf("%s needs two numbers", kind)
		}

		var err error
		if op.Addr, err = parseNumber(a); err != nil {
			return op, err
		}

		op.Value, err = parseNumber(strings.TrimSpace(b))

		return op, err
	case OpWrite:
		a, b, found := strings.Cut(rest, " ")
		if !found {
			return op, fmt.Errorf("write needs an address and data")
		}

		var err error
		if op.Addr, err = parseNumber(a); err != nil {
			return op, err
		}

		op.Data, err = parseData(strings.TrimSpace(b))

		return op, err
	default:
		return op, fmt.Errorf("unknown operation %q", kind)
	}
}

func parseNumber(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

func parseData(s string) ([]byte, error) {
	if h, ok := strings.CutPrefix(s, "hex:"); ok {
		return hex.DecodeString(h)
	}

	str, err := strconv.Unquote(s)
	if err != nil {
		return nil, fmt.Errorf("bad data %s: %w", s, err)
	}

	return []byte(str), nil
}
