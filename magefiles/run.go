//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Converts every example script under testbed/scripts into out/.
func (Run) Examples() error {
	mg.Deps(Build.Binary)
	fmt.Println("Converting examples...")
	if _, err := executeCmd("bin/cadscene", withArgs("-o", "out", "-log-level", "debug", "testbed/scripts"), withStream()); err != nil {
		return err
	}
	return nil
}

// Watches testbed/scripts and reconverts scripts as they change.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/cadscene", withArgs("-watch", "-o", "out", "testbed/scripts"), withStream()); err != nil {
		return err
	}
	return nil
}
