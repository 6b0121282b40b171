package machine

import (
	"io"
	"os"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

// env.go implements the environment-call trampoline: a fixed, ordered table
// of host-backed calls indexed by i32 call code, grounded on
// original_source/src/environment.rs. The DATA segment doubles as the heap
// malloc bumps through.

// RetCode is the negative status an environment call returns on failure;
// zero or positive values are call-specific success results.
type RetCode int32

const (
	RetUTF8Error             RetCode = -5
	RetGenericIOError        RetCode = -4
	RetInvalidFileDescriptor RetCode = -3
	RetAddressOutOfBounds    RetCode = -2
	RetArgsInvalid           RetCode = -1
	RetOK                    RetCode = 0
)

const firstFD = 3

// Environment holds the host-backed resources env calls manipulate: the
// heap bump pointer and the table of files opened via the "open" call.
type Environment struct {
	heapPtr   isa.Word
	openFiles map[int32]*os.File
	nextFD    int32

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func newEnvironment() *Environment {
	return &Environment{
		heapPtr:   isa.DATA.Start,
		openFiles: make(map[int32]*os.File),
		nextFD:    firstFD,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdin:     os.Stdin,
	}
}

// envCallFunc is a host-backed call; it reads its own arguments from the
// operand stack and returns the value ecall will push as the result.
type envCallFunc func(m *Machine) int32

// envCallList is the fixed, ordered table of environment calls. Its index
// is the i32 "call code" an ecall instruction's argument selects.
var envCallList = []envCallFunc{
	envExit,
	envOpen,
	envWrite,
	envRead,
	envMalloc,
}

func envExit(m *Machine) int32 {
	status, err := m.pop()
	if err != nil {
		return int32(RetOK)
	}

	if status == 0 {
		m.status = Status{Kind: Stopped}
	} else {
		m.fault(&Error{Kind: ProgramExit, Code: status})
	}

	return int32(RetOK)
}

func envOpen(m *Machine) int32 {
	pathBuf, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	pathLen, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	data, code := m.readBuf(pathBuf, pathLen)
	if code != RetOK {
		return int32(code)
	}

	f, err := os.OpenFile(string(data), os.O_RDWR, 0)
	if err != nil {
		return int32(RetGenericIOError)
	}

	fd := m.env.nextFD
	m.env.nextFD++
	m.env.openFiles[fd] = f

	return fd
}

func envWrite(m *Machine) int32 {
	fd, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	buf, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	bufLen, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	data, code := m.readBuf(buf, bufLen)
	if code != RetOK {
		return int32(code)
	}

	var w io.Writer

	switch fd {
	case 1:
		w = m.env.stdout
	case 2:
		w = m.env.stderr
	default:
		f, ok := m.env.openFiles[int32(fd)]
		if !ok {
			return int32(RetInvalidFileDescriptor)
		}

		w = f
	}

	n, writeErr := w.Write(data)
	if writeErr != nil {
		return int32(RetGenericIOError)
	}

	return int32(n)
}

func envRead(m *Machine) int32 {
	fd, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	buf, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	bufLen, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	if code := m.checkBuf(buf, bufLen); code != RetOK {
		return int32(code)
	}

	var r io.Reader

	switch fd {
	case 1:
		r = m.env.stdin
	default:
		f, ok := m.env.openFiles[int32(fd)]
		if !ok {
			return int32(RetInvalidFileDescriptor)
		}

		r = f
	}

	data := make([]byte, int(bufLen))

	n, readErr := r.Read(data)
	if readErr != nil && readErr != io.EOF {
		return int32(RetGenericIOError)
	}

	for i := 0; i < n; i++ {
		if err := m.unsafeStore(buf+isa.Word(i), isa.Word(data[i])); err != nil {
			return int32(RetAddressOutOfBounds)
		}
	}

	return int32(n)
}

func envMalloc(m *Machine) int32 {
	size, err := m.pop()
	if err != nil {
		return int32(RetArgsInvalid)
	}

	if m.env.heapPtr+size >= isa.DATA.End {
		return 0
	}

	ptr := m.env.heapPtr
	m.env.heapPtr += size

	return int32(ptr)
}

// checkBuf reports RetOK when buf >= AddrSpace.Start and buf+bufLen <
// AddrSpace.End, and RetAddressOutOfBounds otherwise; a buffer ending exactly
// at AddrSpace.End is rejected.
func (m *Machine) checkBuf(buf, bufLen isa.Word) RetCode {
	if buf < isa.AddrSpace.Start || buf+bufLen >= isa.AddrSpace.End {
		return RetAddressOutOfBounds
	}

	return RetOK
}

// readBuf copies bufLen bytes (one per word's low byte) out of machine
// memory starting at buf.
func (m *Machine) readBuf(buf, bufLen isa.Word) ([]byte, RetCode) {
	if code := m.checkBuf(buf, bufLen); code != RetOK {
		return nil, code
	}

	data := make([]byte, int(bufLen))

	for i := range data {
		word, err := m.unsafeLoad(buf + isa.Word(i))
		if err != nil {
			return nil, RetAddressOutOfBounds
		}

		data[i] = byte(word)
	}

	return data, RetOK
}
