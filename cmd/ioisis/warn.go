package main

import (
	"fmt"
	"os"
)

// warn prints a non-fatal advisory to stderr, the same yellow ">>"
// styling holo-build's util.go used for its own deprecated-key notices.
func warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\x1b[33m\x1b[1m>>\x1b[0m %s\n", fmt.Sprintf(format, args...))
}
