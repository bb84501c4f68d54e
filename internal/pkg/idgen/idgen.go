// Package idgen hands out product identifiers and sequence numbers.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Generator creates identifiers for new products.
type Generator interface {
	NewID() string
	NextSeq() int64
}

// Snowflake issues UUIDv4 ids and time-ordered snowflake sequence numbers.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake needs a node id unique per running instance (0..1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("idgen: snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) NewID() string {
	return uuid.NewString()
}

func (s *Snowflake) NextSeq() int64 {
	return s.node.Generate().Int64()
}
