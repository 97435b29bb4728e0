/*
Package ddb provides a DynamoDB implementation of backend.Backend.

All keys live in one table with a string partition key PK and a string
sort key SK:

	PK=<key>  SK=#value      plain value, attribute Value
	PK=<key>  SK=F#<field>   one hash field, attribute Value
	PK=<key>  SK=#ttl        expiry of the whole hash

Expiry is stored as ExpiresAtMs and checked on every read. The same instant
is written to TTL in epoch seconds; point the table's time-to-live setting
at TTL to have DynamoDB purge expired rows.

Example:

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "us-east-1"})
	if err != nil {
	    return err
	}
	kv := ddb.New(client, "models")
*/
package ddb
