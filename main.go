/*
texload loads images into textures. Paths are given as arguments; with
-watch every image that appears in the directory is loaded too.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faiface/mainthread"

	"github.com/spaghettifunk/texload/engine"
	"github.com/spaghettifunk/texload/engine/core"
	"github.com/spaghettifunk/texload/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	envFile := flag.String("env", ".env", "dotenv file with TEXLOAD_* overrides")
	async := flag.Bool("async", false, "load all paths concurrently")
	watch := flag.String("watch", "", "directory to watch for new images")
	flag.Parse()

	config, err := engine.LoadApplicationConfig(*configPath, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if flag.NArg() == 0 && *watch == "" {
		fmt.Fprintln(os.Stderr, "usage: texload [flags] image...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// the main thread executor needs the process main thread
	mainthread.Run(func() {
		if err := run(config, flag.Args(), *async, *watch); err != nil {
			core.LogFatal("%s", err)
		}
	})
}

func run(config *engine.ApplicationConfig, paths []string, async bool, watch string) error {
	lg := testbed.NewLoaderGame(config, paths, async, watch)

	e, err := engine.New(lg.Game)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.Stop()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		return err
	}
	fmt.Println(lg.Summary())
	return runErr
}
