package vm

import (
	"bufio"
	"fmt"
	"os"
)

// stdout is shared by every engine's Print opcode. Guest output is
// buffered rather than written a syscall at a time; Flush runs after every
// write since a guest program can run indefinitely and a crash mid-run
// should not lose output already produced.
var stdout = bufio.NewWriter(os.Stdout)

func emitPrint(v int32) {
	fmt.Fprintf(stdout, "[%d]\n", v)
	stdout.Flush()
}

// SetOutput redirects Print output, for tests that want to capture it
// instead of writing to the process's real stdout.
func SetOutput(w *bufio.Writer) (restore func()) {
	prev := stdout
	stdout = w
	return func() { stdout = prev }
}
