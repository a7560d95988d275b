//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the binary and keeps loading the images in testdata until interrupted.
func (Run) Testdata() error {
	mg.Deps(Build.Binary)
	fmt.Println("Run texload...")
	if _, err := executeCmd("bin/texload", withArgs("-async", "-watch", "testdata"), withStream()); err != nil {
		return err
	}
	return nil
}
