package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Creates directory and returns its absolute path.
func initDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// goCommand returns the go binary for c.
func goCommand(c Configuration) (string, error) {
	if c.Root == "" {
		return "go", nil
	}
	root, err := filepath.Abs(os.ExpandEnv(c.Root))
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "bin", "go"), nil
}

func logCommand(cmd *exec.Cmd, env []string) {
	slog.Debug("exec", "dir", cmd.Dir, "env", strings.Join(env, " "), "cmd", cmd.String())
}

// buildArgs returns the 'go test -c' arguments building benchmark b for c.
func buildArgs(c Configuration, b Benchmark, binDir, profDir string) []string {
	args := []string{"test", "-c", "-a",
		"-gcflags=all=" + c.GcFlags,
		"-ldflags=all=" + c.LdFlags,
	}
	args = append(args, c.BuildFlags...)
	if c.PgoUse != "" {
		args = append(args, "-pgo="+filepath.Join(profDir, b.Name+".pprof"))
	}
	return append(args, "-o", filepath.Join(binDir, b.Name))
}

// runArgs returns the test binary arguments for run i of benchmark b.
func runArgs(c Configuration, b Benchmark, profTmpDir string, i int) []string {
	args := []string{"-test.run=^$", "-test.bench=" + b.Benchmarks}
	args = append(args, c.RunFlags...)
	args = append(args, b.RunFlags...)
	if c.PgoGen {
		prof := fmt.Sprintf("%s_%d.pprof", b.Name, i)
		args = append(args, "-test.cpuprofile="+filepath.Join(profTmpDir, prof))
	}
	return args
}

func buildBenchmarks(c Configuration, bench []Benchmark, tmpDir string) error {
	binDir, err := initDir(filepath.Join(tmpDir, c.Name))
	if err != nil {
		return err
	}
	gocmd, err := goCommand(c)
	if err != nil {
		return err
	}
	profDir := ""
	if c.PgoUse != "" {
		if profDir, err = initDir(filepath.Join(tmpDir, c.PgoUse, "profiles")); err != nil {
			return err
		}
	}
	slog.Info("Building benchmarks", "configuration", c.Name)
	for _, b := range bench {
		if b.Disabled {
			continue
		}
		dir, err := filepath.Abs(os.ExpandEnv(b.Dir))
		if err != nil {
			return err
		}
		cmd := exec.Command(gocmd, buildArgs(c, b, binDir, profDir)...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), c.GcEnv...)
		if c.Root != "" {
			cmd.Env = append(cmd.Env, "GOROOT="+filepath.Dir(filepath.Dir(gocmd)))
		}
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		logCommand(cmd, c.GcEnv)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("build %s/%s: %w", c.Name, b.Name, err)
		}
	}
	return nil
}

// runBenchmarks runs every enabled benchmark count times and feeds the
// output to rep.
func runBenchmarks(c Configuration, bench []Benchmark, tmpDir string, count int, rep *Report) error {
	binDir, err := initDir(filepath.Join(tmpDir, c.Name))
	if err != nil {
		return err
	}
	profDir := ""
	if c.PgoGen {
		if profDir, err = initDir(filepath.Join(binDir, "profiles")); err != nil {
			return err
		}
	}
	slog.Info("Running benchmarks", "configuration", c.Name, "count", count)
	for _, b := range bench {
		if b.Disabled {
			continue
		}
		profTmpDir := ""
		if c.PgoGen {
			profTmpDir = filepath.Join(profDir, "_"+b.Name)
			if err := os.RemoveAll(profTmpDir); err != nil {
				return err
			}
			if profTmpDir, err = initDir(profTmpDir); err != nil {
				return err
			}
		}
		bin := filepath.Join(binDir, b.Name)
		for i := 0; i < count; i++ {
			var cmd *exec.Cmd
			if len(c.RunWrapper) > 0 {
				args := append(append([]string{}, c.RunWrapper[1:]...), bin)
				cmd = exec.Command(c.RunWrapper[0], args...)
			} else {
				cmd = exec.Command(bin)
			}
			cmd.Args = append(cmd.Args, runArgs(c, b, profTmpDir, i)...)
			cmd.Dir = binDir
			cmd.Env = append(os.Environ(), c.RunEnv...)

			var out bytes.Buffer
			cmd.Stdout = io.MultiWriter(os.Stdout, &out)
			cmd.Stderr = os.Stderr
			fmt.Printf("\nshortname: %s\ntoolchain: %s\n", b.Name, c.Name)
			logCommand(cmd, c.RunEnv)
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("run %s/%s: %w", c.Name, b.Name, err)
			}
			rep.Add(c.Name, b.Name, parseBenchmarkOutput(out.String()))
		}
		if c.PgoGen && count > 0 {
			if err := mergeProfiles(c, b, profDir, profTmpDir, count); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeProfiles merges the per-run CPU profiles of b into one profile usable
// by a configuration's PgoUse.
func mergeProfiles(c Configuration, b Benchmark, profDir, profTmpDir string, count int) error {
	gocmd, err := goCommand(c)
	if err != nil {
		return err
	}
	profs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		profs = append(profs, filepath.Join(profTmpDir, fmt.Sprintf("%s_%d.pprof", b.Name, i)))
	}
	cmd := exec.Command(gocmd, append([]string{"tool", "pprof", "-proto"}, profs...)...)

	merged := filepath.Join(profDir, b.Name+".pprof")
	out, err := os.Create(merged)
	if err != nil {
		return err
	}
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	logCommand(cmd, nil)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("merge profiles for %s: %w", b.Name, err)
	}
	return os.RemoveAll(profTmpDir)
}
