/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/suparena/redismodel/backend"
	"github.com/suparena/redismodel/codec"
	"github.com/suparena/redismodel/errors"
	"github.com/suparena/redismodel/metrics"
	"github.com/suparena/redismodel/query"
)

// Store persists instances of T in a key-value backend.
type Store[T any] interface {
	Namespace() string
	Layout() LayoutKind
	ExpiryScope() ExpiryScope

	// PrimaryKey resolves the key of entity from pk, id or unique-together fields
	PrimaryKey(entity *T) (string, error)
	// Key returns the backend key holding the record for pk
	Key(pk string) string

	// Set validates entity and writes it, replacing any record with the same key
	Set(ctx context.Context, entity *T) error
	// Get reads the record stored under pk
	Get(ctx context.Context, pk string) (*T, error)
	// MatchForPK is Get
	MatchForPK(ctx context.Context, pk string) (*T, error)
	// MatchForValues scans for the single record satisfying filters
	MatchForValues(ctx context.Context, filters query.Filters) (*T, error)
	// Match uses the primary key when filters determine one, else MatchForValues
	Match(ctx context.Context, filters query.Filters) (*T, error)

	// All yields every stored record. Each range over the sequence re-scans.
	All(ctx context.Context) iter.Seq2[*T, error]
	// Filter yields the records satisfying filters. Each range re-scans.
	Filter(ctx context.Context, filters query.Filters) iter.Seq2[*T, error]
	// Stream delivers matches on a channel from a background goroutine
	Stream(ctx context.Context, filters query.Filters, opts ...query.StreamOption) <-chan query.StreamResult[T]

	// Refresh overwrites entity with its stored state, leaving it untouched on error
	Refresh(ctx context.Context, entity *T) error
	// Delete removes the record of entity. Deleting an absent record succeeds.
	Delete(ctx context.Context, entity *T) error
	DeleteByPK(ctx context.Context, pk string) error
}

// KVStore implements Store on a StorageLayout and a Codec.
// It holds no mutable state and is safe for concurrent use.
type KVStore[T any] struct {
	layout   StorageLayout
	codec    codec.Codec[T]
	resolver KeyResolver
	strict   bool
	genPK    bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

var _ Store[struct{}] = (*KVStore[struct{}])(nil)

// NewPerKey creates a store keeping each instance under "namespace:pk".
func NewPerKey[T any](kv backend.Backend, c codec.Codec[T], opts Options) (*KVStore[T], error) {
	if kv == nil {
		return nil, fmt.Errorf("model: backend is required")
	}
	opts, err := resolveOptions[T](opts)
	if err != nil {
		return nil, err
	}
	return New(NewPerKeyLayout(kv, opts.Namespace, opts.Expire, opts.ScanCount), c, opts)
}

// NewSharedHash creates a store keeping all instances in the hash "namespace".
// A non-zero expiry applies to the whole hash; construction logs a warning
// and ExpiryScope reports ExpiryPerType.
func NewSharedHash[T any](kv backend.Backend, c codec.Codec[T], opts Options) (*KVStore[T], error) {
	if kv == nil {
		return nil, fmt.Errorf("model: backend is required")
	}
	opts, err := resolveOptions[T](opts)
	if err != nil {
		return nil, err
	}
	if opts.Expire > 0 {
		opts.Logger.Warn("Expiry applies to every record of the model at once",
			"model", opts.Namespace,
			"layout", LayoutSharedHash,
			"expire", opts.Expire,
		)
	}
	return New(NewSharedHashLayout(kv, opts.Namespace, opts.Expire), c, opts)
}

// New creates a store on an arbitrary layout. The layout owns namespace and
// expiry; the remaining options configure keys, scans and logging.
func New[T any](layout StorageLayout, c codec.Codec[T], opts Options) (*KVStore[T], error) {
	if layout == nil {
		return nil, fmt.Errorf("model: layout is required")
	}
	if c == nil {
		return nil, fmt.Errorf("model: codec is required")
	}
	if layout.Namespace() == "" {
		return nil, fmt.Errorf("model: namespace must not be empty")
	}
	if opts.KeySeparator == "" {
		opts.KeySeparator = DefaultKeySeparator
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &KVStore[T]{
		layout: layout,
		codec:  c,
		resolver: KeyResolver{
			TypeName:       layout.Namespace(),
			UniqueTogether: opts.UniqueTogether,
			Separator:      opts.KeySeparator,
		},
		strict:  opts.StrictPerformance,
		genPK:   opts.GeneratePK,
		logger:  opts.Logger.With("model", layout.Namespace(), "layout", layout.Kind()),
		metrics: opts.Metrics,
	}, nil
}

func (s *KVStore[T]) Namespace() string        { return s.layout.Namespace() }
func (s *KVStore[T]) Layout() LayoutKind       { return s.layout.Kind() }
func (s *KVStore[T]) ExpiryScope() ExpiryScope { return s.layout.ExpiryScope() }
func (s *KVStore[T]) Key(pk string) string     { return s.layout.Key(pk) }

func (s *KVStore[T]) PrimaryKey(entity *T) (string, error) {
	prim, err := s.codec.ToPrimitive(entity)
	if err != nil {
		return "", err
	}
	return s.resolver.Resolve(prim)
}

func (s *KVStore[T]) Set(ctx context.Context, entity *T) error {
	prim, err := s.codec.ToPrimitive(entity)
	if err != nil {
		return err
	}
	if err := s.codec.Validate(entity); err != nil {
		return err
	}

	pk, err := s.resolver.Resolve(prim)
	if err != nil {
		if !s.genPK || !errors.IsKeyResolution(err) {
			return err
		}
		if pk, prim, err = s.generatePK(entity, prim); err != nil {
			return err
		}
	}

	data, err := s.codec.Marshal(prim)
	if err != nil {
		return err
	}
	if err := s.layout.Write(ctx, pk, data); err != nil {
		return err
	}

	s.logger.Debug("Record stored", "pk", pk, "key", s.layout.Key(pk))
	return nil
}

// generatePK writes a random UUID into the pk field of entity. Types
// without a pk field cannot keep the value and fail with KeyResolutionError.
func (s *KVStore[T]) generatePK(entity *T, prim map[string]any) (string, map[string]any, error) {
	pk := uuid.NewString()

	withPK := make(map[string]any, len(prim)+1)
	for k, v := range prim {
		withPK[k] = v
	}
	withPK[PKField] = pk

	updated, err := s.codec.FromPrimitive(withPK)
	if err != nil {
		return "", nil, err
	}
	check, err := s.codec.ToPrimitive(updated)
	if err != nil {
		return "", nil, err
	}
	if got, _ := keyString(check[PKField]); got != pk {
		return "", nil, errors.NewKeyResolutionError(s.Namespace())
	}

	*entity = *updated
	return pk, check, nil
}

func (s *KVStore[T]) Get(ctx context.Context, pk string) (*T, error) {
	item, _, err := s.load(ctx, pk)
	return item, err
}

func (s *KVStore[T]) load(ctx context.Context, pk string) (*T, map[string]any, error) {
	if pk == "" {
		return nil, nil, errors.NewNotFoundError(s.Namespace(), pk)
	}
	data, found, err := s.layout.Read(ctx, pk)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, errors.NewNotFoundError(s.Namespace(), pk)
	}
	return s.decode(data)
}

func (s *KVStore[T]) decode(data []byte) (*T, map[string]any, error) {
	prim, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.codec.FromPrimitive(prim)
	if err != nil {
		return nil, nil, err
	}
	return item, prim, nil
}

func (s *KVStore[T]) MatchForPK(ctx context.Context, pk string) (*T, error) {
	return s.Get(ctx, pk)
}

func (s *KVStore[T]) MatchForValues(ctx context.Context, filters query.Filters) (*T, error) {
	preds, err := query.Parse(filters)
	if err != nil {
		return nil, err
	}
	if s.strict {
		return nil, errors.NewStrictPerformanceError(s.Namespace(), "match_for_values")
	}

	var found *T
	count := 0
	err = s.scan(ctx, func(r scanned[T]) error {
		if r.err != nil {
			return r.err
		}
		if !query.MatchAll(preds, r.prim) {
			return nil
		}
		count++
		if found == nil {
			item, err := s.codec.FromPrimitive(r.prim)
			if err != nil {
				return err
			}
			found = item
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch count {
	case 0:
		return nil, errors.NewNotFoundError(s.Namespace(), "")
	case 1:
		return found, nil
	default:
		return nil, errors.NewMultipleFoundError(s.Namespace(), count)
	}
}

// Match goes through the primary key when the equality filters resolve
// one. The record found that way must satisfy every other filter as well.
func (s *KVStore[T]) Match(ctx context.Context, filters query.Filters) (*T, error) {
	preds, err := query.Parse(filters)
	if err != nil {
		return nil, err
	}

	pk, err := s.resolver.Resolve(query.Equalities(preds))
	if err != nil {
		return s.MatchForValues(ctx, filters)
	}

	item, prim, err := s.load(ctx, pk)
	if err != nil {
		return nil, err
	}
	if !query.MatchAll(preds, prim) {
		return nil, errors.NewNotFoundError(s.Namespace(), pk)
	}
	return item, nil
}

func (s *KVStore[T]) All(ctx context.Context) iter.Seq2[*T, error] {
	return s.iterate(ctx, nil)
}

func (s *KVStore[T]) Filter(ctx context.Context, filters query.Filters) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		preds, err := query.Parse(filters)
		if err != nil {
			yield(nil, err)
			return
		}
		if s.strict {
			yield(nil, errors.NewStrictPerformanceError(s.Namespace(), "filter"))
			return
		}
		s.iterate(ctx, preds)(yield)
	}
}

// errStop ends a scan early when the consumer stops ranging
var errStop = stderrors.New("stop scan")

// iterate yields matching records. A record that fails to decode is yielded
// as an error and the scan continues if the consumer keeps ranging.
func (s *KVStore[T]) iterate(ctx context.Context, preds []query.Predicate) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := s.scan(ctx, func(r scanned[T]) error {
			if r.err != nil {
				if !yield(nil, r.err) {
					return errStop
				}
				return nil
			}
			if !query.MatchAll(preds, r.prim) {
				return nil
			}
			item, err := s.codec.FromPrimitive(r.prim)
			if !yield(item, err) {
				return errStop
			}
			return nil
		})
		if err != nil && !stderrors.Is(err, errStop) {
			yield(nil, err)
		}
	}
}

// scanned is one raw record of a scan. err is set when the record could
// not be decoded.
type scanned[T any] struct {
	prim  map[string]any
	err   error
	index int64
}

func (s *KVStore[T]) scan(ctx context.Context, fn func(r scanned[T]) error) error {
	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues(s.Namespace(), string(s.Layout())).Inc()
	}

	var n, foreign int64
	err := s.layout.Scan(ctx, func(slot string, data []byte) error {
		prim, err := s.codec.Unmarshal(data)
		if err == nil && !s.owns(slot, prim) {
			foreign++
			return nil
		}
		n++
		return fn(scanned[T]{prim: prim, err: err, index: n})
	})

	if s.metrics != nil {
		s.metrics.RecordsScanned.WithLabelValues(s.Namespace()).Add(float64(n))
	}
	s.logger.Debug("Scan finished", "records", n, "foreign", foreign)
	return err
}

// owns reports whether a scanned record was written by this store. A
// per-key scan of "a:*" also sees the keys of a namespace "a:b"; such a
// record resolves to a pk whose key differs from the slot it was found in.
func (s *KVStore[T]) owns(slot string, prim map[string]any) bool {
	pk, err := s.resolver.Resolve(prim)
	return err == nil && pk == slot
}

func (s *KVStore[T]) Refresh(ctx context.Context, entity *T) error {
	pk, err := s.PrimaryKey(entity)
	if err != nil {
		return err
	}
	fresh, err := s.Get(ctx, pk)
	if err != nil {
		return err
	}
	*entity = *fresh
	return nil
}

func (s *KVStore[T]) Delete(ctx context.Context, entity *T) error {
	pk, err := s.PrimaryKey(entity)
	if err != nil {
		return err
	}
	return s.DeleteByPK(ctx, pk)
}

func (s *KVStore[T]) DeleteByPK(ctx context.Context, pk string) error {
	if err := s.layout.Remove(ctx, pk); err != nil {
		return err
	}
	s.logger.Debug("Record deleted", "pk", pk)
	return nil
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	var out []*T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
