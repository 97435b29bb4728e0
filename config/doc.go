/*
Package config loads backend and model settings for redismodel commands.

A YAML file declares the backend and the models:

	backend: redis
	key_prefix: shop
	redis:
	  url: redis://localhost:6379/0
	  circuit_breaker:
	    enabled: true
	models:
	  - name: IceCream
	    layout: per_key
	    expire: 1h
	  - name: Order
	    layout: shared_hash
	    unique_together: [customer, number]

Environment variables, including those from a .env file in the working
directory, override the file: REDISMODEL_BACKEND, REDISMODEL_KEY_PREFIX,
REDIS_URL, REDIS_BREAKER_*, DYNAMODB_TABLE, DYNAMODB_ENDPOINT, AWS_REGION,
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, LOG_LEVEL and LOG_FORMAT.
*/
package config
