//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the conversion benchmarks.
func (Test) Bench() error {
	if _, err := executeCmd("go", withArgs("test", "-run", "^$", "-bench", ".", "./engine/..."), withStream()); err != nil {
		return err
	}
	return nil
}
