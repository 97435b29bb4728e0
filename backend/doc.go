/*
Package backend defines the key-value store contract used by the model layouts.

The contract is the subset of Redis commands the layouts need:

	GET / MGET / SET (with TTL) / DEL / EXPIRE / SCAN
	HGET / HSET / HDEL / HGETALL

Implementations:
  - redis: go-redis v9 client, with optional metrics and circuit breaker hooks
  - ddb: DynamoDB single-table implementation
  - mock: in-memory implementation with a controllable clock, for tests

Backends that are not Redis use MatchPattern to apply SCAN glob patterns.
*/
package backend
