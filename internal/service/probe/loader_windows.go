//go:build windows

package probe

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// loadLibraryVersion loads the DLL and calls VersionSymbol.
func loadLibraryVersion(path string) (int, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}

	defer func() {
		_ = dll.Release()
	}()

	proc, err := dll.FindProc(VersionSymbol)
	if err != nil {
		return 0, fmt.Errorf("find %s in %s: %w", VersionSymbol, path, err)
	}

	version, _, _ := proc.Call()

	return int(uint32(version)), nil
}
