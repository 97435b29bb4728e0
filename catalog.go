/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redismodel

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/redismodel/model"
)

// TypedCatalog holds named stores for a single type T
type TypedCatalog[T any] struct {
	mu     sync.RWMutex
	stores map[string]model.Store[T]
}

// NewTypedCatalog creates a new TypedCatalog for type T
func NewTypedCatalog[T any]() *TypedCatalog[T] {
	return &TypedCatalog[T]{
		stores: make(map[string]model.Store[T]),
	}
}

// Register adds a store with the given name
func (tc *TypedCatalog[T]) Register(name string, store model.Store[T]) error {
	if store == nil {
		return fmt.Errorf("store %q is nil", name)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if _, exists := tc.stores[name]; exists {
		return fmt.Errorf("store with name %q already registered", name)
	}

	tc.stores[name] = store
	return nil
}

// Get retrieves a store by name
func (tc *TypedCatalog[T]) Get(name string) (model.Store[T], error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	store, exists := tc.stores[name]
	if !exists {
		return nil, fmt.Errorf("store with name %q not found", name)
	}
	return store, nil
}

// Remove deletes a store by name
func (tc *TypedCatalog[T]) Remove(name string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if _, exists := tc.stores[name]; !exists {
		return fmt.Errorf("store with name %q not found", name)
	}

	delete(tc.stores, name)
	return nil
}

// List returns all registered store names in sorted order
func (tc *TypedCatalog[T]) List() []string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	names := make([]string, 0, len(tc.stores))
	for name := range tc.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (tc *TypedCatalog[T]) describe(typ reflect.Type) []StoreInfo {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	infos := make([]StoreInfo, 0, len(tc.stores))
	for name, store := range tc.stores {
		infos = append(infos, StoreInfo{
			Name:        name,
			Type:        typ.String(),
			Namespace:   store.Namespace(),
			Layout:      store.Layout(),
			ExpiryScope: store.ExpiryScope(),
		})
	}
	return infos
}

// StoreInfo describes one registered store
type StoreInfo struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Namespace   string            `json:"namespace"`
	Layout      model.LayoutKind  `json:"layout"`
	ExpiryScope model.ExpiryScope `json:"expiryScope"`
}

type describer interface {
	describe(typ reflect.Type) []StoreInfo
}

// Catalog manages TypedCatalog instances for different types
type Catalog struct {
	mu       sync.RWMutex
	catalogs map[reflect.Type]describer
}

// NewCatalog creates a new Catalog
func NewCatalog() *Catalog {
	return &Catalog{
		catalogs: make(map[reflect.Type]describer),
	}
}

// For returns the TypedCatalog for type T, creating it if necessary
func For[T any](c *Catalog) *TypedCatalog[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := reflect.TypeFor[T]()
	if tc, exists := c.catalogs[typ]; exists {
		return tc.(*TypedCatalog[T])
	}

	tc := NewTypedCatalog[T]()
	c.catalogs[typ] = tc
	return tc
}

// Describe lists every store of every type, ordered by namespace and name.
func (c *Catalog) Describe() []StoreInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var infos []StoreInfo
	for typ, tc := range c.catalogs {
		infos = append(infos, tc.describe(typ)...)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Namespace != infos[j].Namespace {
			return infos[i].Namespace < infos[j].Namespace
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Register is a convenience function to register a store for type T
func Register[T any](c *Catalog, name string, store model.Store[T]) error {
	return For[T](c).Register(name, store)
}

// Get is a convenience function to get a store for type T
func Get[T any](c *Catalog, name string) (model.Store[T], error) {
	return For[T](c).Get(name)
}

// Remove is a convenience function to remove a store for type T
func Remove[T any](c *Catalog, name string) error {
	return For[T](c).Remove(name)
}

// List is a convenience function to list all store names for type T
func List[T any](c *Catalog) []string {
	return For[T](c).List()
}
