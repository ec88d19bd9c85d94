package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kyledewey/gradr/internal/cloneurl"
	"github.com/kyledewey/gradr/internal/procrunner"
)

// GitCheckoutPipeline clones a project's repository into its own
// working directory before delegating the build and test phases to a
// LocalMakefilePipeline. Its working directory is unique per instance
// even for concurrently-claimed jobs of the same project, so it
// embeds a uuid suffix in the directory name.
type GitCheckoutPipeline struct {
	CloneURL     *cloneurl.CloneUrl
	Branch       string
	BuildRoot    string
	MakefilePath string

	CloneTimeout time.Duration

	dir   string
	local *LocalMakefilePipeline
}

// dirName returns the working-directory name for this checkout:
// the project name plus a short uuid suffix.
func (p *GitCheckoutPipeline) dirName() string {
	return p.CloneURL.ProjectName() + "-" + uuid.NewString()[:8]
}

func (p *GitCheckoutPipeline) workDir() string {
	if p.dir == "" {
		p.dir = filepath.Join(p.BuildRoot, p.dirName())
	}
	return p.dir
}

func (p *GitCheckoutPipeline) makefilePipeline() *LocalMakefilePipeline {
	if p.local == nil {
		p.local = &LocalMakefilePipeline{
			Dir:          p.workDir(),
			MakefilePath: p.MakefilePath,
		}
	}
	return p.local
}

func (p *GitCheckoutPipeline) cloneTimeout() time.Duration {
	if p.CloneTimeout > 0 {
		return p.CloneTimeout
	}
	return defaultPhaseTimeout
}

func (p *GitCheckoutPipeline) EnvTimeout() time.Duration { return p.cloneTimeout() }

func (p *GitCheckoutPipeline) EnvCommands() []procrunner.Cmd {
	clone := procrunner.Cmd{
		Program: "git",
		Args:    []string{"clone", "-b", p.Branch, p.CloneURL.String(), p.workDir()},
		Dir:     p.BuildRoot,
	}
	return append([]procrunner.Cmd{clone}, p.makefilePipeline().EnvCommands()...)
}

func (p *GitCheckoutPipeline) BuildTimeout() time.Duration { return p.makefilePipeline().BuildTimeout() }

func (p *GitCheckoutPipeline) BuildCommands() []procrunner.Cmd { return p.makefilePipeline().BuildCommands() }

func (p *GitCheckoutPipeline) TestTimeout() time.Duration { return p.makefilePipeline().TestTimeout() }

func (p *GitCheckoutPipeline) TestCommand() procrunner.Cmd { return p.makefilePipeline().TestCommand() }

// Close recursively removes the cloned working directory.
func (p *GitCheckoutPipeline) Close() error {
	if p.dir == "" {
		return nil
	}
	return os.RemoveAll(p.dir)
}
