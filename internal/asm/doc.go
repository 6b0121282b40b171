/*
Package asm implements the textual assembler and single-pass linker: a
line-oriented parser that lowers assembly source into a buffer of
partially-resolved instructions, call-frame metadata, and a relocation
table, followed by a relocation pass that resolves every symbolic
reference against the multi-scope symbol table (constants, globals,
subroutines, inner labels, frame variables) and rewrites instruction
immediates in place.

	result, err := asm.Assemble(strings.NewReader(source))
	if err != nil {
		// err wraps one *asm.ParseError or *asm.LinkError per failure, via errors.Join.
	}
	machine.LoadCode(result.Binary)
	machine.LoadDebugInfo(result.DebugInfo)

Grounded on original_source/src/assembler.rs and src/linker.rs; the two are
combined into a single package here, following smoynes-elsie's
internal/asm package boundary (parser + generator + symbol table in one
package) rather than the original's crate-level split.
*/
package asm
