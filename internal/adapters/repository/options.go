// Package repository defines the published run store interface and errors.
package repository

// Default shard count for the in-memory store.
const defaultShardCount = 8

type storeConfig struct {
	shardCount int
}

// Option applies a configuration option to the ShardStore.
type Option func(*storeConfig)

// WithShardCount sets the number of shards in the store.
func WithShardCount(count int) Option {
	return func(c *storeConfig) {
		if count > 0 {
			c.shardCount = count
		}
	}
}
