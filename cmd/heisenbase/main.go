// Command heisenbase builds endgame tablebase files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/profile"

	"bitbucket.org/zurichess/heisenbase/candidates"
	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/solver"
	"bitbucket.org/zurichess/heisenbase/wdlfile"
)

var log = logging.MustGetLogger("heisenbase")

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	enableProfile := flag.Bool("profile", false, "wrap the run in a CPU profile")
	flag.Parse()

	if *enableProfile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	setupLogging(cfg.LogLevel)

	if flag.NArg() == 0 {
		fatal(fmt.Errorf("heisenbase: usage: heisenbase [-config FILE] <generate KEY | generate-many>"))
	}

	var err error
	switch flag.Arg(0) {
	case "generate":
		if flag.NArg() != 2 {
			err = fmt.Errorf("heisenbase: generate needs exactly one material key argument")
			break
		}
		err = runGenerate(cfg, flag.Arg(1))
	case "generate-many":
		err = runGenerateMany(cfg)
	default:
		err = fmt.Errorf("heisenbase: unknown command %q", flag.Arg(0))
	}
	if err != nil {
		fatal(err)
	}
}

func setupLogging(level string) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatter := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
	))
	leveled := logging.AddModuleLevel(formatter)
	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
}

func fatal(err error) {
	log.Error(err)
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// runGenerate builds one table and writes <key>.hbt into cfg.DataDir.
func runGenerate(cfg Config, keyStr string) error {
	key, err := material.ParseMaterialKey(keyStr)
	if err != nil {
		return err
	}
	return generate(cfg, key)
}

func generate(cfg Config, key material.MaterialKey) error {
	outPath := tablePath(cfg.DataDir, key)
	if _, err := os.Stat(outPath); err == nil {
		log.Infof("%s already exists, skipping", outPath)
		return nil
	}

	for _, child := range key.ChildMaterialKeys() {
		if _, err := os.Stat(tablePath(cfg.DataDir, child)); os.IsNotExist(err) {
			if err := generate(cfg, child); err != nil {
				return fmt.Errorf("heisenbase: building child %s of %s: %w", child, key, err)
			}
		}
	}

	children, err := solver.LoadChildren(cfg.DataDir, key.ChildMaterialKeys())
	if err != nil {
		return err
	}

	table, err := solver.Build(context.Background(), key, children, solver.Options{
		Workers:  cfg.Workers,
		Reporter: solver.LoggingReporter{},
	})
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("heisenbase: creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := wdlfile.Write(f, table); err != nil {
		return fmt.Errorf("heisenbase: writing %s: %w", outPath, err)
	}
	log.Infof("wrote %s (%d positions)", outPath, len(table.Positions))
	return nil
}

// runGenerateMany drives generate per candidate in the configured
// popularity-ranked list, skipping files that already exist.
func runGenerateMany(cfg Config) error {
	if cfg.CandidatesFile == "" {
		return fmt.Errorf("heisenbase: generate-many requires candidates_file in the config")
	}
	list, err := candidates.Load(cfg.CandidatesFile)
	if err != nil {
		return err
	}
	keys, err := candidates.Selected(list, 0, 6)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := generate(cfg, key); err != nil {
			return err
		}
	}
	return nil
}

func tablePath(dataDir string, key material.MaterialKey) string {
	return dataDir + string(os.PathSeparator) + key.String() + ".hbt"
}
