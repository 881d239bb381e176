// Copyright (c) 2017-2018 The bzx developers

package params

import (
	"fmt"
)

// ActiveNetParams points to the parameters the process is running with.
// It is set once at startup by SelectParams and treated as read-only
// afterwards.
var ActiveNetParams = &MainNetParams

// SelectParams switches the active network parameters by name.
func SelectParams(name string) error {
	switch name {
	case MainNetParams.Name:
		ActiveNetParams = &MainNetParams
	case TestNetParams.Name:
		ActiveNetParams = &TestNetParams
	case PrivNetParams.Name:
		ActiveNetParams = &PrivNetParams
	default:
		return fmt.Errorf("unknown network %q", name)
	}
	return nil
}
