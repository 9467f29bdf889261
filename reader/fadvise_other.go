//go:build !linux

package reader

import "os"

// adviseSequential is a no-op outside Linux.
func adviseSequential(*os.File, int64) {}
