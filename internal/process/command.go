package process

import (
	"os/exec"
	"syscall"

	"github.com/loykin/warden/internal/env"
)

// buildCommand assembles the java invocation for the configured jar. The
// child is made its own process group leader so a forceful kill reaches any
// helper processes the server forks.
func (s *Supervisor) buildCommand(dir, jar string) *exec.Cmd {
	set := s.opts.Settings
	args := []string{
		"-Xms" + set.RAMMin(),
		"-Xmx" + set.RAMMax(),
		"-jar", jar,
	}
	args = append(args, s.opts.ExtraArgs...)
	args = append(args, "nogui")

	cmd := exec.Command(set.JavaPath(), args...) // #nosec G204 -- operator-configured executable
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if len(s.opts.Env) > 0 || s.opts.UseOSEnv {
		e := env.New()
		if s.opts.UseOSEnv {
			e.FromOS()
		}
		cmd.Env = e.Merge(s.opts.Env)
	}
	return cmd
}
