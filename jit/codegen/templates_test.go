//go:build (amd64 && linux) || (amd64 && darwin)

package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatchbench/vm"
)

// TestTemplatesEndInRet checks the convention engine/calljit relies on
// (every standalone template is callable as a function) and engine/inlinejit
// relies on (every template's trailing byte is exactly the one it strips
// before splicing the body into a bigger block).
func TestTemplatesEndInRet(t *testing.T) {
	for op, tmpl := range Templates {
		require.NotEmptyf(t, tmpl.Code, "opcode %v has no code", op)
		require.Equalf(t, byte(0xC3), tmpl.Code[len(tmpl.Code)-1], "opcode %v must end in ret", op)
		require.Equal(t, op, tmpl.Opcode)
	}
}

// TestCoreStackOpcodesHaveTemplates pins the subset of opcodes the JIT
// engines are documented (jit/codegen package doc) to compile natively.
func TestCoreStackOpcodesHaveTemplates(t *testing.T) {
	for _, op := range []vm.Opcode{
		vm.Nop, vm.Halt, vm.Push, vm.Inc, vm.Dec,
		vm.Add, vm.Sub, vm.And, vm.Or, vm.Xor,
		vm.Dup, vm.Drop, vm.Jump,
	} {
		_, ok := Templates[op]
		require.Truef(t, ok, "expected a native template for %v", op)
	}
}

// TestOffsetsAreDistinctAndWordAligned sanity-checks the ABI layout every
// template is built against.
func TestOffsetsAreDistinctAndWordAligned(t *testing.T) {
	offsets := map[string]int{
		"PC": OffsetPC, "State": OffsetState, "Steps": OffsetSteps,
		"SP": OffsetSP, "Stack": OffsetStack,
		"StepLimit": OffsetStepLimit, "JumpTableAddr": OffsetJumpTableAddr,
	}
	seen := map[int]string{}
	for name, off := range offsets {
		require.GreaterOrEqualf(t, off, 0, "%s offset negative", name)
		require.Zerof(t, off%4, "%s offset %d not 4-byte aligned", name, off)
		if prev, ok := seen[off]; ok {
			t.Fatalf("offsets %s and %s collide at %d", prev, name, off)
		}
		seen[off] = name
	}
}
