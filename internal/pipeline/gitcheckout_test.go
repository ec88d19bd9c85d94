package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kyledewey/gradr/internal/cloneurl"
)

func newGitCheckoutPipeline(t *testing.T, buildRoot string) *GitCheckoutPipeline {
	t.Helper()
	cu, err := cloneurl.Parse("https://github.com/kyledewey/gradr.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &GitCheckoutPipeline{
		CloneURL:     cu,
		Branch:       "main",
		BuildRoot:    buildRoot,
		MakefilePath: "testdata/compile_success/makefile",
	}
}

func TestGitCheckoutPipelineDistinctWorkDirsForSameProject(t *testing.T) {
	root := t.TempDir()
	a := newGitCheckoutPipeline(t, root)
	b := newGitCheckoutPipeline(t, root)

	if a.workDir() == b.workDir() {
		t.Errorf("two pipelines for the same project collided on %q", a.workDir())
	}
}

func TestGitCheckoutPipelineEnvCommandsCloneThenCopyMakefile(t *testing.T) {
	root := t.TempDir()
	p := newGitCheckoutPipeline(t, root)

	cmds := p.EnvCommands()
	if len(cmds) != 2 {
		t.Fatalf("got %d env commands, want 2 (clone, copy makefile)", len(cmds))
	}
	if cmds[0].Program != "git" {
		t.Errorf("first env command = %q, want git", cmds[0].Program)
	}
	if cmds[1].Program != "cp" {
		t.Errorf("second env command = %q, want cp", cmds[1].Program)
	}
}

func TestGitCheckoutPipelineCloseRemovesWorkDir(t *testing.T) {
	root := t.TempDir()
	p := newGitCheckoutPipeline(t, root)

	dir := p.workDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("work dir still present after Close")
	}
}

func TestGitCheckoutPipelineCloseBeforeWorkDirCreatedIsNoop(t *testing.T) {
	p := &GitCheckoutPipeline{}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
