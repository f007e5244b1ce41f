package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init sets up the Snowflake node. Only the first call has an effect; later
// calls return the first call's result.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered int64 ID. Init must have succeeded first.
func New() int64 {
	return node.Generate().Int64()
}
