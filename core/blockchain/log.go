// Copyright (c) 2017-2018 The bzx developers

package blockchain

import (
	elog "github.com/ethereum/go-ethereum/log"
)

// log is the package-wide logger.  The default writes through the root
// handler tagged with this module's name; the daemon may replace it via
// UseLogger to route through its own handler set.
var log = elog.New(elog.Ctx{"module": "blockchain"})

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger elog.Logger) {
	log = logger
}
