package utilities

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// IDGenerator produces opaque unique identifiers for stored records.
type IDGenerator func() string

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewIDGenerator returns a generator for the given strategy ("ksuid" or
// "snowflake"). Snowflake ids need a node number in [0, 1023].
func NewIDGenerator(strategy string, node int64) (IDGenerator, error) {
	switch strategy {
	case "", "ksuid":
		return NewKSUID, nil
	case "snowflake":
		n, err := snowflake.NewNode(node)
		if err != nil {
			return nil, fmt.Errorf("snowflake node %d: %w", node, err)
		}
		return func() string { return n.Generate().String() }, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
