package installer

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"
)

// toolPrefix starts the executable name of every J-Link tool (JLinkExe, JLinkGDBServer, JLink.exe).
const toolPrefix = "JLink"

// RunningTools lists J-Link tools currently running on the host.
// Installing while they run can leave the old library loaded.
func RunningTools() ([]string, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, err
	}

	return findTools(processes, os.Getpid()), nil
}

func findTools(processes []ps.Process, self int) []string {
	var tools []string

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if name := process.Executable(); strings.HasPrefix(name, toolPrefix) {
			tools = append(tools, name)
		}
	}

	return tools
}
