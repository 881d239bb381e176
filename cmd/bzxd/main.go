// Copyright (c) 2017-2018 The bzx developers

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ethereum/go-ethereum/log"

	"github.com/bzxproject/bzxd/core/blockchain"
	"github.com/bzxproject/bzxd/params"
)

// bzxdMain is the real main function for bzxd.  It is invoked from main so
// defers run before the exit code is returned.
func bzxdMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.NoFileLogging {
		initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
		defer logRotator.Close()
	}
	if err := parseAndSetDebugLevel(cfg.DebugLevel); err != nil {
		return err
	}

	networkName := params.MainNetParams.Name
	if cfg.TestNet {
		networkName = params.TestNetParams.Name
	} else if cfg.PrivNet {
		networkName = params.PrivNetParams.Name
	}
	if err := params.SelectParams(networkName); err != nil {
		return err
	}
	activeParams := params.ActiveNetParams

	log.Info("bzxd starting", "version", version(), "go", runtime.Version(),
		"network", activeParams.Name)

	// Self-check: the genesis block constants must reproduce the pinned
	// genesis hash before any validation is trusted.
	genesisHash := activeParams.GenesisBlock.BlockHash()
	if genesisHash != activeParams.GenesisHash {
		return fmt.Errorf("genesis block hash mismatch: got %v, want %v",
			genesisHash, activeParams.GenesisHash)
	}
	log.Info("genesis verified", "hash", genesisHash.String())

	// Bootstrap the in-memory consensus state.  Block storage and
	// networking attach to this scaffold.
	chain := blockchain.NewChain()
	genesisIndex := blockchain.NewBlockIndex(&activeParams.GenesisBlock.Header, nil)
	if err := chain.Attach(genesisIndex); err != nil {
		return err
	}

	zcState := blockchain.NewZerocoinState(activeParams)
	changes := zcState.BuildStateFromIndex(chain)
	log.Info("consensus state ready", "height", chain.Height(),
		"recalculatedBlocks", changes.Cardinality())

	return nil
}

func main() {
	if err := bzxdMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
