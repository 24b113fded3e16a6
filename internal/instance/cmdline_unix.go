//go:build !windows

package instance

import (
	"os"

	"github.com/kballard/go-shellquote"
)

// CommandLine returns the full command line of this process, quoted so the
// receiving side can split it back into arguments.
func CommandLine() string {
	return shellquote.Join(os.Args...)
}
