package judge

import "fmt"

// defect reports a broken invariant. Fatal with -tags termania_debug, ignored otherwise.
func defect(format string, args ...any) {
	if debugAssertions {
		panic(fmt.Sprintf("judge: "+format, args...))
	}
}
