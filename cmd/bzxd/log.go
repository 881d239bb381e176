// Copyright (c) 2017-2018 The bzx developers

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jrick/logrotate/rotator"
	"github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"

	"github.com/bzxproject/bzxd/core/blockchain"
)

var (
	glogger *log.GlogHandler

	// termHandler writes to the terminal; it is combined with the file
	// rotator once one is configured.
	termHandler log.Handler

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator
)

func init() {
	// Init a colorful logger if possible.
	usecolor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"

	// Output is set to stderr: it's easier to handle when run as a daemon
	// through systemd or supervisord, and Go runtime exceptions are
	// printed to stderr as well.
	output := io.Writer(os.Stderr)
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	termHandler = log.StreamHandler(output, log.TerminalFormat(usecolor))
	glogger = log.NewGlogHandler(termHandler)

	log.Root().SetHandler(glogger)

	blockchain.UseLogger(log.New(log.Ctx{"module": "blockchain"}))
}

// initLogRotator initializes the logging rotator to write logs to logFile
// and create roll files in the same directory.  It must be called before
// the package-global log rotator variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	logRotator = r
	glogger = log.NewGlogHandler(log.MultiHandler(
		log.StreamHandler(r, log.LogfmtFormat()),
		termHandler,
	))
	log.Root().SetHandler(glogger)
}

// parseAndSetDebugLevel attempts to parse the specified debug level and set
// the level accordingly.
func parseAndSetDebugLevel(debugLevel string) error {
	lvl, err := log.LvlFromString(debugLevel)
	if err != nil {
		return fmt.Errorf("the specified debug level [%v] is invalid", debugLevel)
	}
	glogger.Verbosity(lvl)
	return nil
}
