//go:build unix

package runtime

import "os"

func isRoot() bool { return os.Geteuid() == 0 }
