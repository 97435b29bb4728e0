/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/suparena/redismodel"
	"github.com/suparena/redismodel/backend"
	"github.com/suparena/redismodel/backend/ddb"
	"github.com/suparena/redismodel/backend/mock"
	"github.com/suparena/redismodel/backend/redis"
	"github.com/suparena/redismodel/codec"
	"github.com/suparena/redismodel/config"
	"github.com/suparena/redismodel/model"
	"github.com/suparena/redismodel/query"
)

// Record is a schemaless model instance
type Record = map[string]any

type app struct {
	cfg     *config.Config
	catalog *redismodel.Catalog
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
}

// openBackend connects to the configured backend. The returned func
// releases the connection.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		opts := []redis.Option{redis.WithLogger(logger)}
		if b := cfg.Redis.Breaker; b.Enabled {
			opts = append(opts, redis.WithCircuitBreaker(redis.BreakerConfig{
				MinRequests:  b.MinRequests,
				FailureRatio: b.FailureRatio,
				Interval:     b.Interval,
				OpenTimeout:  b.OpenTimeout,
			}))
		}
		client, err := redis.NewClient(cfg.Redis.URL, opts...)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return client, client.Close, nil

	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			Region:    cfg.DynamoDB.Region,
			AccessKey: cfg.DynamoDB.AccessKey,
			SecretKey: cfg.DynamoDB.SecretKey,
			Endpoint:  cfg.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return ddb.New(client, cfg.DynamoDB.Table), func() error { return nil }, nil

	case config.BackendMemory:
		return mock.New(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openStore(kv backend.Backend, m config.ModelConfig, keyPrefix string, logger *slog.Logger) (model.Store[Record], error) {
	opts := m.Options(keyPrefix)
	opts.Logger = logger

	c := codec.NewJSON[Record]()
	if m.LayoutKind() == model.LayoutSharedHash {
		store, err := model.NewSharedHash[Record](kv, c, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := model.NewPerKey[Record](kv, c, opts)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newApp(cfg *config.Config, kv backend.Backend, in io.Reader, out io.Writer, logger *slog.Logger) (*app, error) {
	catalog := redismodel.NewCatalog()
	for _, m := range cfg.Models {
		store, err := openStore(kv, m, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		if err := redismodel.Register(catalog, m.Name, store); err != nil {
			return nil, err
		}
	}
	return &app{cfg: cfg, catalog: catalog, in: in, out: out, logger: logger}, nil
}

func (a *app) run(ctx context.Context, modelName string, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given")
	}
	cmd, args := args[0], args[1:]

	if cmd == "models" {
		return a.models()
	}

	if modelName == "" {
		return fmt.Errorf("%s: -model is required", cmd)
	}
	store, err := redismodel.Get[Record](a.catalog, modelName)
	if err != nil {
		return fmt.Errorf("model %q is not declared in the configuration", modelName)
	}

	switch cmd {
	case "get":
		if len(args) != 1 {
			return errors.New("usage: get <pk>")
		}
		rec, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(rec)

	case "put":
		if len(args) != 1 {
			return errors.New("usage: put <json|->")
		}
		rec, err := a.readRecord(args[0])
		if err != nil {
			return err
		}
		if err := store.Set(ctx, rec); err != nil {
			return err
		}
		pk, err := store.PrimaryKey(rec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, pk)
		return err

	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <pk>")
		}
		return store.DeleteByPK(ctx, args[0])

	case "list":
		return a.printAll(store.All(ctx))

	case "filter":
		filters, err := parseFilters(args)
		if err != nil {
			return err
		}
		return a.stream(ctx, store, filters)

	case "match":
		filters, err := parseFilters(args)
		if err != nil {
			return err
		}
		rec, err := store.Match(ctx, filters)
		if err != nil {
			return err
		}
		return a.print(rec)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) models() error {
	enc := json.NewEncoder(a.out)
	for _, info := range a.catalog.Describe() {
		if err := enc.Encode(info); err != nil {
			return err
		}
	}
	return nil
}

// stream prints matches as they arrive. Records that fail to decode are
// logged and skipped.
func (a *app) stream(ctx context.Context, store model.Store[Record], filters query.Filters) error {
	results := store.Stream(ctx, filters,
		query.WithErrorHandler(func(err error) bool {
			a.logger.Warn("Skipping unreadable record", "error", err)
			return true
		}),
		query.WithProgressHandler(func(p query.StreamProgress) {
			if p.Done {
				a.logger.Debug("Filter finished", "matched", p.ItemsMatched, "skipped", len(p.Errors))
			}
		}),
	)

	var firstErr error
	for result := range results {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		if err := a.print(result.Item); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *app) printAll(seq iter.Seq2[*Record, error]) error {
	for rec, err := range seq {
		if err != nil {
			return err
		}
		if err := a.print(rec); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) print(rec *Record) error {
	return json.NewEncoder(a.out).Encode(rec)
}

func (a *app) readRecord(arg string) (*Record, error) {
	var r io.Reader = strings.NewReader(arg)
	if arg == "-" {
		r = a.in
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	if rec == nil {
		return nil, errors.New("invalid record: expected a JSON object")
	}
	return &rec, nil
}

// parseFilters turns field=value arguments into filters. Values that are
// not valid JSON are kept as strings.
func parseFilters(args []string) (query.Filters, error) {
	filters := make(query.Filters, len(args))
	for _, arg := range args {
		field, raw, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", arg)
		}
		filters[field] = parseValue(raw)
	}
	return filters, nil
}

func parseValue(raw string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	return v
}
