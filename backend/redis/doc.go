/*
Package redis implements backend.Backend on Redis using go-redis.

	client, err := redis.NewClient("redis://localhost:6379/0",
	    redis.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	    redis.WithCircuitBreaker(redis.DefaultBreakerConfig()),
	)
	if err != nil {
	    return err
	}
	defer client.Close()

Plain keys are written with SET and its EX option, so a value and its TTL
land in one command. Hash layouts use HSET followed by EXPIRE on the whole
hash. Full scans walk SCAN cursors with a MATCH pattern; keys can repeat
between pages and callers are expected to tolerate that.

MetricsHook and CircuitBreakerHook are plain go-redis hooks and can be added
to any client, including one shared with the rest of an application.
*/
package redis
