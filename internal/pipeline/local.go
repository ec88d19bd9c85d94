package pipeline

import (
	"path/filepath"
	"time"

	"github.com/kyledewey/gradr/internal/procrunner"
)

const defaultPhaseTimeout = 2 * time.Minute

// LocalMakefilePipeline builds a project that already lives on disk,
// using a fixed makefile copied into the working directory. It is
// used for the grading backend's own self-tests.
type LocalMakefilePipeline struct {
	// Dir is the working directory the build runs in.
	Dir string
	// MakefilePath is the fixed makefile copied into Dir before the
	// build phase runs.
	MakefilePath string

	Timeout time.Duration
}

func (p *LocalMakefilePipeline) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return defaultPhaseTimeout
}

func (p *LocalMakefilePipeline) EnvTimeout() time.Duration { return p.timeout() }

func (p *LocalMakefilePipeline) EnvCommands() []procrunner.Cmd {
	return []procrunner.Cmd{
		{
			Program: "cp",
			Args:    []string{p.MakefilePath, filepath.Join(p.Dir, "makefile")},
		},
	}
}

func (p *LocalMakefilePipeline) BuildTimeout() time.Duration { return p.timeout() }

func (p *LocalMakefilePipeline) BuildCommands() []procrunner.Cmd {
	return []procrunner.Cmd{
		{Program: "make", Args: []string{"-s", "build"}, Dir: p.Dir},
	}
}

func (p *LocalMakefilePipeline) TestTimeout() time.Duration { return p.timeout() }

func (p *LocalMakefilePipeline) TestCommand() procrunner.Cmd {
	return procrunner.Cmd{Program: "make", Args: []string{"-s", "test"}, Dir: p.Dir}
}

// Close removes the copied makefile and an a.out build artifact, if
// present, from the working directory, leaving the rest of Dir
// untouched.
func (p *LocalMakefilePipeline) Close() error {
	return removeAll(
		filepath.Join(p.Dir, "makefile"),
		filepath.Join(p.Dir, "a.out"),
	)
}
