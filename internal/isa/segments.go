package isa

// segments.go partitions the flat address space into named regions, after
// original_source/src/mem.rs's segs module.

// Segment is a named half-open range of the address space.
type Segment struct {
	Name  string
	Start Word
	End   Word
}

// Len returns the number of addressable words in the segment.
func (s Segment) Len() int {
	return int(s.End - s.Start)
}

// Contains reports whether addr falls within the segment.
func (s Segment) Contains(addr Word) bool {
	return addr >= s.Start && addr < s.End
}

// Clamp intersects [start, end) with the segment's range.
func (s Segment) Clamp(start, end Word) (Word, Word) {
	if start < s.Start {
		start = s.Start
	}

	if end > s.End {
		end = s.End
	}

	return start, end
}

// Segments, in address order. Disjoint and covering a prefix of the address
// space: STACK, then CODE, then DATA.
var (
	STACK = Segment{Name: "stack", Start: 0x00000, End: 0x10000} // 64 KiW
	CODE  = Segment{Name: "code", Start: 0x10000, End: 0x30000}  // 128 KiW
	DATA  = Segment{Name: "data", Start: 0x30000, End: 0x80000}  // 320 KiW
)

// All lists every segment, in address order.
var All = []Segment{STACK, CODE, DATA}

// AddrSpace is the union of every segment: the full addressable range.
var AddrSpace = Segment{Name: "addrspace", Start: STACK.Start, End: DATA.End}

// Special stack cells: fixed absolute addresses inside STACK holding
// machine-visible registers.
const (
	PC       Word = 0 // program counter (code address)
	SP       Word = 1 // stack pointer (next free stack cell)
	FP       Word = 2 // frame pointer (current frame base)
	BOUNDARY Word = 3 // sentinel word
	INIT_SP  Word = 4 // lowest legal SP value
)

// Sentinel values used to initialize memory.
const (
	InitFP       Word = 0xFFFFFF
	InitBoundary Word = 0xBBBBBB
)

// TotalWords is the total addressable size of the machine's memory.
func TotalWords() int {
	n := 0
	for _, seg := range All {
		n += seg.Len()
	}

	return n
}
