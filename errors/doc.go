/*
Package errors provides semantic error types for the redismodel library.

Every error kind has a sentinel so callers can use the standard errors.Is()
function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound          = errors.New("record not found")
	    ErrMultipleFound     = errors.New("multiple records found")
	    ErrKeyResolution     = errors.New("primary key could not be resolved")
	    ErrUnsupportedLookup = errors.New("unsupported lookup")
	    ErrInvalidInput      = errors.New("invalid input")
	    ErrBackend           = errors.New("backend failure")
	    ErrStrictPerformance = errors.New("full scan not allowed")
	)

Usage:

	user, err := users.Get(ctx, "123")
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, fmt.Errorf("user %s does not exist", "123")
	    }
	    return nil, err
	}

BackendError and ValidationError keep the underlying cause, so errors.As can
still reach a go-redis or DynamoDB error through them.
*/
package errors
