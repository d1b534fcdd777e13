package main

import "log"

// Log line layout for progress output on stderr.
const (
	logPrefix = "entrylink: "
	logFlags  = log.LstdFlags
)

// Valid values of the link override flags.
var (
	validManyModes       = []string{"append", "replace"}
	validMissingPolicies = []string{"skip", "fail"}
)
