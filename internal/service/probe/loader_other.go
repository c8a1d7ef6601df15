//go:build !darwin && !linux && !windows

package probe

import "fmt"

func loadLibraryVersion(path string) (int, error) {
	return 0, fmt.Errorf("%s: %w", path, errUnsupportedOS)
}
