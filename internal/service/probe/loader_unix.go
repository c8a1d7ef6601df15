//go:build darwin || linux

package probe

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// loadLibraryVersion opens the library with dlopen and calls VersionSymbol.
func loadLibraryVersion(path string) (int, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return 0, fmt.Errorf("dlopen %s: %w", path, err)
	}

	defer func() {
		_ = purego.Dlclose(handle)
	}()

	symbol, err := purego.Dlsym(handle, VersionSymbol)
	if err != nil {
		return 0, fmt.Errorf("dlsym %s in %s: %w", VersionSymbol, path, err)
	}

	version, _, _ := purego.SyscallN(symbol)

	return int(uint32(version)), nil
}
