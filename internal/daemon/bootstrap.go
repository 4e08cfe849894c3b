package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// StartDetached spawns a new capmon process running the scan loop,
// detached from the parent (survives the terminal closing).
// configPath is forwarded to the child's --config flag.
func StartDetached(configPath string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(executable, "run", "--config", configPath)

	// New session, no controlling terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	return cmd.Start()
}
