//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type cmdOptions struct {
	args   []string
	env    []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

// withEnv adds KEY=VALUE pairs on top of the current environment.
func withEnv(env ...string) cmdOption {
	return func(o *cmdOptions) {
		o.env = append(o.env, env...)
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

// executeCmd runs command and returns its combined output. Output is echoed
// when streaming or with mage -v, and dumped on failure otherwise.
func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	fmt.Printf("> %s %s\n", command, strings.Join(opts.args, " "))
	c := exec.Command(command, opts.args...)
	if len(opts.env) > 0 {
		c.Env = append(os.Environ(), opts.env...)
	}

	var out bytes.Buffer
	echo := mg.Verbose() || opts.stream
	if echo {
		c.Stdout = io.MultiWriter(&out, os.Stdout)
		c.Stderr = io.MultiWriter(&out, os.Stderr)
	} else {
		c.Stdout = &out
		c.Stderr = &out
	}

	if err := c.Run(); err != nil {
		if !echo {
			fmt.Println(out.String())
		}
		return "", fmt.Errorf("%s failed: %w", command, err)
	}
	return out.String(), nil
}

func hasCommand(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
