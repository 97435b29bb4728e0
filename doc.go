/*
Package redismodel persists validated Go models in Redis and other
key-value stores.

Two storage layouts are available behind one generic interface:
  - Per-key: every instance lives under "Namespace:pk" with its own TTL.
    Primary key reads and writes are O(1).
  - Shared hash: every instance is a field of the hash "Namespace". One key
    per type, but an expiry applies to all instances of the type together.

Filtering by field values always scans the whole namespace; there are no
secondary indexes.

Basic Usage:

	client, err := redis.NewClient("redis://localhost:6379/0")
	if err != nil {
	    return err
	}

	flavors, err := model.NewPerKey[IceCream](client, codec.NewJSON[IceCream](), model.Options{
	    Expire: time.Hour,
	})
	if err != nil {
	    return err
	}

	err = flavors.Set(ctx, &IceCream{PK: "vanilla", Amount: 30})
	vanilla, err := flavors.Get(ctx, "vanilla")
	big, err := model.Collect(flavors.Filter(ctx, query.Filters{"amount__gte": 30}))

Stores for many types can be kept in a Catalog:

	catalog := redismodel.NewCatalog()
	redismodel.Register[IceCream](catalog, "flavors", flavors)
	flavors, err := redismodel.Get[IceCream](catalog, "flavors")

Packages:
  - model: stores, layouts and primary key resolution
  - query: filter predicates and stream options
  - codec: JSON codec validating go-openapi style models
  - backend/redis, backend/ddb, backend/mock: key-value backends
  - errors: semantic error types
  - config, logging: application wiring used by cmd/modelctl
*/
package redismodel
