// Copyright (c) 2017-2018 The bzx developers

package main

import (
	"fmt"
)

const (
	appMajor = 0
	appMinor = 13
	appPatch = 3
)

// version returns the application version as a properly formed string.
func version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}
