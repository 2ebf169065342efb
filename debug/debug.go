package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Diff       bool
	Apply      bool
	Index      bool
	Candidates bool
}

var d *debug

func init() {
	d = &debug{}
	d.Diff = boolEnv("PREFAB_DEBUG_DIFF")
	d.Apply = boolEnv("PREFAB_DEBUG_APPLY")
	d.Index = boolEnv("PREFAB_DEBUG_INDEX")
	d.Candidates = boolEnv("PREFAB_DEBUG_CANDIDATES")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Diff() bool {
	return d.Diff
}
func Apply() bool {
	return d.Apply
}
func Index() bool {
	return d.Index
}
func Candidates() bool {
	return d.Candidates
}
