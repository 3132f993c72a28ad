//go:build threadsdebug

package racecheck

const enabled = true
