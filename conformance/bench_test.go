package conformance

import (
	"bufio"
	"io"
	"testing"

	"dispatchbench/engine"
	"dispatchbench/vm"
)

// The benchmarks below are the comparison this repository exists for: the
// same guest program, the same semantics, one dispatch strategy per
// benchmark. Print output goes to io.Discard so the numbers measure
// dispatch, not terminal I/O.

func benchmarkEngine(b *testing.B, name string) {
	mk, ok := engine.Registry[name]
	if !ok {
		b.Skipf("engine %q not registered on this platform", name)
	}
	mem := buildFactorial(12)
	restore := vm.SetOutput(bufio.NewWriter(io.Discard))
	defer restore()

	eng := mk()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cpu := vm.New(mem)
		if err := eng.Run(cpu, 1_000_000); err != nil {
			b.Fatal(err)
		}
		if cpu.State != vm.StateHalted {
			b.Fatalf("engine %s: unexpected end state %v", name, cpu.State)
		}
	}
}

func BenchmarkSwitch(b *testing.B)         { benchmarkEngine(b, "switch") }
func BenchmarkPredecoded(b *testing.B)     { benchmarkEngine(b, "predecoded") }
func BenchmarkSubroutine(b *testing.B)     { benchmarkEngine(b, "subroutine") }
func BenchmarkTailcall(b *testing.B)       { benchmarkEngine(b, "tailcall") }
func BenchmarkThreaded(b *testing.B)       { benchmarkEngine(b, "threaded") }
func BenchmarkThreadedCached(b *testing.B) { benchmarkEngine(b, "threaded-cached") }
