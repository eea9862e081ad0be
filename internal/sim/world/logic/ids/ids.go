// Package ids formats and parses the sequential entity ids of a world.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinePrefix   = "M"
	MarkerPrefix = "K"
)

func MineID(n uint64) string   { return fmt.Sprintf("%s%04d", MinePrefix, n) }
func MarkerID(n uint64) string { return fmt.Sprintf("%s%06d", MarkerPrefix, n) }

func ParseUintAfterPrefix(prefix, id string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(id[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
