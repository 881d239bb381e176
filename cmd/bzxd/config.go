// Copyright (c) 2017-2018 The bzx developers

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "bzxd.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "bzxd.log"
)

var (
	defaultHomeDir    = appDataDir("bzxd")
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

type config struct {
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir        string `long:"logdir" description:"Directory to log output."`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging."`
	TestNet       bool   `long:"testnet" description:"Use the test network"`
	PrivNet       bool   `long:"privnet" description:"Use the private network"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, crit}"`
}

func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// loadConfig initializes and parses the config using a config file and
// command line options.
func loadConfig() (*config, []string, error) {
	cfg := config{
		HomeDir:    defaultHomeDir,
		ConfigFile: defaultConfigFile,
		DebugLevel: defaultLogLevel,
		LogDir:     defaultLogDir,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.  Any error ends loading here: flag errors other
	// than a help request are printed and the process exits, the rest are
	// returned to the caller.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.Default)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return nil, nil, err
	}

	if preCfg.ShowVersion {
		fmt.Printf("bzxd version %s\n", version())
		os.Exit(0)
	}

	parser := newConfigParser(&cfg, flags.Default)
	if preCfg.ConfigFile != defaultConfigFile || fileExists(preCfg.ConfigFile) {
		iniParser := flags.NewIniParser(parser)
		if err := iniParser.ParseFile(preCfg.ConfigFile); err != nil {
			if _, ok := err.(*os.PathError); !ok {
				fmt.Fprintln(os.Stderr, err)
				return nil, nil, err
			}
		}
	}

	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, nil, err
	}

	if cfg.TestNet && cfg.PrivNet {
		err := fmt.Errorf("testnet and privnet params can't be used together")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}

func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		return !os.IsNotExist(err)
	}
	return true
}

// appDataDir returns an operating system specific data directory for the
// application.
func appDataDir(appName string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "."
	}
	return filepath.Join(homeDir, "."+appName)
}
