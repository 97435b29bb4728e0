/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suparena/redismodel"
	"github.com/suparena/redismodel/config"
	"github.com/suparena/redismodel/logging"
)

var (
	configFlag  = flag.String("config", os.Getenv("REDISMODEL_CONFIG"), "Path to the YAML configuration file")
	modelFlag   = flag.String("model", "", "Name of the model to operate on")
	timeoutFlag = flag.Duration("timeout", 30*time.Second, "Timeout for the whole command")
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: modelctl [flags] <command> [args]

Commands:
  models                 list the configured models
  get <pk>               print the record stored under pk
  put <json|->           store a record read from the argument or stdin
  delete <pk>            delete the record stored under pk
  list                   print every record of the model
  filter [field=value]   print the records matching all filters
  match [field=value]    print the single record matching all filters
  version                show version information

Filter values are parsed as JSON when possible, e.g. amount__gte=30
or flavor__in='["vanilla","chocolate"]'.

Flags:
`)
	flag.PrintDefaults()
}

func printVersion() {
	info := redismodel.GetVersionInfo()
	fmt.Printf("redismodel modelctl version %s\n", info.Version)
	fmt.Printf("Git commit: %s\n", info.GitCommit)
	fmt.Printf("Build date: %s\n", info.BuildDate)
	fmt.Printf("Go version: %s\n", info.GoVersion)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag || *vFlag || flag.Arg(0) == "version" {
		printVersion()
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	os.Exit(execute())
}

func execute() int {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeoutFlag)
	defer cancel()

	kv, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", "backend", cfg.Backend, "error", err)
		return 1
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logger.Warn("Failed to close backend", "error", err)
		}
	}()

	a, err := newApp(cfg, kv, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Error("Failed to set up models", "error", err)
		return 1
	}

	if err := a.run(ctx, *modelFlag, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
