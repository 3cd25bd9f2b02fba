// SPDX-License-Identifier:Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

var (
	binary   = pflag.StringSliceP("binary", "b", []string{"vppctl"}, "binaries to act upon")
	action   = pflag.StringSliceP("action", "a", []string{"build"}, "actions to execute")
	arch     = pflag.StringSlice("arch", []string{"amd64"}, "CPU architectures to act upon")
	fuzzTime = pflag.String("fuzztime", "30s", "how long to run each fuzz target")

	validBinaries = map[string]bool{
		"vppctl": true,
	}
	validActions = map[string]func(){
		"build": build,
		"test":  test,
		"vet":   vet,
		"fuzz":  fuzz,
	}
	validArchs = map[string]bool{
		"amd64": true,
		"arm":   true,
		"arm64": true,
	}

	// fuzzTargets maps packages to the fuzz functions they define.
	fuzzTargets = map[string][]string{
		"./internal/codec": {"FuzzDecode"},
		"./internal/frame": {"FuzzRead"},
	}
)

func fatal(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func main() {
	pflag.Parse()
	for _, bin := range *binary {
		if bin == "all" {
			*binary = []string{}
			for bin := range validBinaries {
				*binary = append(*binary, bin)
			}
			break
		}
		if !validBinaries[bin] {
			fatal("Unknown binary %q", bin)
		}
	}
	for _, act := range *action {
		if validActions[act] == nil {
			fatal("Unknown action %q", act)
		}
	}
	for _, cpu := range *arch {
		if !validArchs[cpu] {
			fatal("Unknown architecture %q", cpu)
		}
	}

	for _, act := range *action {
		validActions[act]()
	}
}

func build() {
	commit := outputOf("git", "describe", "--dirty", "--always")
	branch := outputOf("git", "rev-parse", "--abbrev-ref", "HEAD")

	for _, cpu := range *arch {
		for _, bin := range *binary {
			cmd := command(
				"go", "build", "-v",
				"-o", outFile(bin, cpu, bin),
				"-ldflags", fmt.Sprintf("-X go.universe.tf/vppapi/internal/version.gitCommit=%s -X go.universe.tf/vppapi/internal/version.gitBranch=%s", commit, branch),
				"go.universe.tf/vppapi/"+bin,
			)
			cmd.Env = append(
				os.Environ(),
				"CGO_ENABLED=0",
				"GOOS=linux",
				"GOARCH="+cpu,
				"GOARM=6",
			)
			if err := cmd.Run(); err != nil {
				fatal("Build of %q (%s) failed: %s", bin, cpu, err)
			}
		}
	}
}

func test() {
	run("go", "test", "-race", "./...")
}

func vet() {
	run("go", "vet", "./...")
}

func fuzz() {
	for pkg, targets := range fuzzTargets {
		for _, target := range targets {
			run("go", "test", "-run", "^$", "-fuzz", "^"+target+"$", "-fuzztime", *fuzzTime, pkg)
		}
	}
}

// Helpers

func outFile(binary, arch, file string) string {
	return filepath.Join(buildDir(binary, arch), file)
}

func buildDir(binary, arch string) string {
	dir := fmt.Sprintf("build/%s/%s", arch, binary)
	if err := os.MkdirAll(dir, 0750); err != nil {
		fatal("Making build dir %q: %v", dir, err)
	}
	return dir
}

func outputOf(cmd string, args ...string) string {
	bs, err := exec.Command(cmd, args...).Output()
	if err != nil {
		fatal("Running %q: %v", append([]string{cmd}, args...), err)
	}
	return strings.TrimSpace(string(bs))
}

func command(argv0 string, args ...string) *exec.Cmd {
	cmd := exec.Command(argv0, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	fmt.Printf("+ %s\n", strings.Join(cmd.Args, " "))
	return cmd
}

func run(argv0 string, args ...string) {
	cmd := command(argv0, args...)
	if err := cmd.Run(); err != nil {
		fatal("Running %q: %v", strings.Join(cmd.Args, " "), err)
	}
}
