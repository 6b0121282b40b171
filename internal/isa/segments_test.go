package isa_test

import (
	"testing"

	. "github.com/mitchelljustin/nais-sub000/internal/isa"
)

func TestSegments_Disjoint(t *testing.T) {
	prev := STACK.Start

	for _, seg := range All {
		if seg.Start != prev {
			t.Errorf("segment %s starts at %s, want %s (prefix coverage broken)", seg.Name, seg.Start, prev)
		}

		prev = seg.End
	}

	if prev != AddrSpace.End {
		t.Errorf("last segment ends at %s, want AddrSpace.End = %s", prev, AddrSpace.End)
	}
}

func TestSegment_Contains(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		addr Word
		want bool
	}{
		{"stack start", STACK, STACK.Start, true},
		{"stack end excluded", STACK, STACK.End, false},
		{"code start", CODE, CODE.Start, true},
		{"data end excluded", DATA, DATA.End, false},
		{"stack addr in code", STACK, CODE.Start, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.Contains(tt.addr); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestSegment_Clamp(t *testing.T) {
	start, end := STACK.Clamp(-100, 1<<20)
	if start != STACK.Start || end != STACK.End {
		t.Errorf("Clamp(-100, huge) = [%s, %s), want [%s, %s)", start, end, STACK.Start, STACK.End)
	}
}

func TestTotalWords(t *testing.T) {
	want := STACK.Len() + CODE.Len() + DATA.Len()
	if got := TotalWords(); got != want {
		t.Errorf("TotalWords() = %d, want %d", got, want)
	}
}
