/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Definition is the persistence configuration of a model type.
type Definition struct {
	// Namespace is the key prefix or hash key; empty means the Go type name
	Namespace         string
	UniqueTogether    []string
	KeySeparator      string
	Expire            time.Duration
	StrictPerformance bool
	GeneratePK        bool
}

var (
	definitions = make(map[reflect.Type]Definition)
	namespaces  = make(map[string]reflect.Type)
	mu          sync.RWMutex
)

// Register associates the Go type T with def. Registering a type twice, or
// two types under the same namespace, panics: both would read and write
// the same keys.
func Register[T any](def Definition) {
	t := reflect.TypeFor[T]()
	if def.Namespace == "" {
		def.Namespace = t.Name()
	}
	if def.Namespace == "" {
		panic(fmt.Sprintf("model registry: type %s needs an explicit namespace", t))
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := definitions[t]; exists {
		panic(fmt.Sprintf("model registry: type %s already registered", t))
	}
	if other, exists := namespaces[def.Namespace]; exists {
		panic(fmt.Sprintf("model registry: namespace %q already used by %s", def.Namespace, other))
	}

	definitions[t] = def
	namespaces[def.Namespace] = t
}

// Lookup retrieves the definition for type T, if any.
func Lookup[T any]() (Definition, bool) {
	t := reflect.TypeFor[T]()

	mu.RLock()
	defer mu.RUnlock()
	def, ok := definitions[t]
	return def, ok
}

// TypeOf returns the Go type registered under namespace.
func TypeOf(namespace string) (reflect.Type, error) {
	mu.RLock()
	defer mu.RUnlock()

	t, ok := namespaces[namespace]
	if !ok {
		return nil, fmt.Errorf("model registry: no type registered for namespace %q", namespace)
	}
	return t, nil
}

// unregister removes T; tests use it to keep the global registry clean
func unregister[T any]() {
	t := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()
	if def, ok := definitions[t]; ok {
		delete(namespaces, def.Namespace)
		delete(definitions, t)
	}
}
