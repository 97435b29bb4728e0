/*
Package codec defines how model instances are turned into primitive maps and
serialized records.

The JSON codec follows encoding/json struct tags, so the field names used by
filters and primary key resolution are the JSON names of the model:

	type IceCream struct {
	    PK     string `json:"pk"`
	    Flavor string `json:"flavor"`
	    Amount int    `json:"amount"`
	}

Models generated by go-swagger implement Validate(strfmt.Registry); the codec
calls it whenever an instance is written or rebuilt from a stored record, and
reports failures as errors.ValidationError.
*/
package codec
