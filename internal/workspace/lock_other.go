//go:build !unix

package workspace

import "os"

// Advisory locking is only implemented for unix hosts, which is where the GPU
// toolchains gpuforge drives are available.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
