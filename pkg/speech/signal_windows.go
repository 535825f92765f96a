//go:build windows

package speech

import (
	"fmt"
	"os"
)

func suspendProcess(p *os.Process) error {
	return fmt.Errorf("pause is not supported on windows")
}

func resumeProcess(p *os.Process) error {
	return fmt.Errorf("resume is not supported on windows")
}
