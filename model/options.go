/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/suparena/redismodel/metrics"
	"github.com/suparena/redismodel/registry"
)

// LayoutKind names a physical mapping from instances to backend keys.
type LayoutKind string

const (
	// LayoutPerKey stores every instance under its own key
	LayoutPerKey LayoutKind = "per_key"
	// LayoutSharedHash stores all instances of a type as fields of one hash
	LayoutSharedHash LayoutKind = "shared_hash"
)

// ExpiryScope describes what a configured expiry applies to.
type ExpiryScope string

const (
	// ExpiryNone means records never expire
	ExpiryNone ExpiryScope = "none"
	// ExpiryPerInstance means each record has its own deadline
	ExpiryPerInstance ExpiryScope = "per_instance"
	// ExpiryPerType means all records of the type expire together
	ExpiryPerType ExpiryScope = "per_type"
)

const (
	DefaultKeySeparator       = "."
	DefaultScanCount    int64 = 100
)

// Options configures a store. Zero values fall back to the type's registry
// definition, then to the defaults above.
type Options struct {
	// Namespace overrides the Go type name used as key prefix or hash key
	Namespace string
	// KeyPrefix is prepended to the namespace as "prefix:namespace"
	KeyPrefix string
	// Expire is the record lifetime; zero means no expiry
	Expire time.Duration
	// UniqueTogether lists the fields combined into a key when pk and id are empty
	UniqueTogether []string
	// KeySeparator joins UniqueTogether values
	KeySeparator string
	// StrictPerformance rejects operations that need a full scan, except All.
	// It is ORed with the registry definition, which it cannot switch off.
	StrictPerformance bool
	// GeneratePK writes a random UUID into the pk field when no key resolves
	// on Set. Like StrictPerformance it is ORed with the registry definition.
	GeneratePK bool
	// ScanCount is the SCAN page size hint of the per-key layout
	ScanCount int64

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// typeName is the default namespace of T
func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// resolveOptions merges opts with the registry definition of T and applies
// defaults. A namespace registered for another type is rejected.
func resolveOptions[T any](opts Options) (Options, error) {
	if def, ok := registry.Lookup[T](); ok {
		if opts.Namespace == "" {
			opts.Namespace = def.Namespace
		}
		if opts.Expire == 0 {
			opts.Expire = def.Expire
		}
		if len(opts.UniqueTogether) == 0 {
			opts.UniqueTogether = def.UniqueTogether
		}
		if opts.KeySeparator == "" {
			opts.KeySeparator = def.KeySeparator
		}
		opts.StrictPerformance = opts.StrictPerformance || def.StrictPerformance
		opts.GeneratePK = opts.GeneratePK || def.GeneratePK
	}

	if opts.Namespace == "" {
		opts.Namespace = typeName[T]()
	}
	if owner, err := registry.TypeOf(opts.Namespace); err == nil && owner != reflect.TypeFor[T]() {
		return opts, fmt.Errorf("model: namespace %q is registered for %s", opts.Namespace, owner)
	}
	if opts.KeyPrefix != "" {
		opts.Namespace = opts.KeyPrefix + ":" + opts.Namespace
	}
	if opts.KeySeparator == "" {
		opts.KeySeparator = DefaultKeySeparator
	}
	if opts.ScanCount <= 0 {
		opts.ScanCount = DefaultScanCount
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts, nil
}
