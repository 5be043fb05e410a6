// Package redis stores each document as a string key and tracks children of
// a parent in a sorted set, so Children returns keys in lexical order.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/logger"
)

var errNotLoaded = errors.New("redis store not loaded")

type Store struct {
	url    string
	prefix string
	rdb    *redis.Client
}

func New(url string) *Store {
	return &Store{url: url, prefix: constants.AppName}
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client) *Store {
	return &Store{prefix: constants.AppName, rdb: rdb}
}

func (s *Store) docKey(path docstore.Path) string {
	return s.prefix + ":doc:" + path.String()
}

func (s *Store) childrenKey(parent docstore.Path) string {
	return s.prefix + ":children:" + parent.String()
}

func (s *Store) connect(ctx context.Context) error {
	if s.rdb != nil {
		return s.rdb.Ping(ctx).Err()
	}
	opts, err := redis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.rdb = rdb
	return nil
}

// Init connects; redis needs no schema.
func (s *Store) Init(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	logger.Info("Redis store ready", "prefix", s.prefix)
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *Store) Describe() string { return "redis" }

func (s *Store) Get(ctx context.Context, path docstore.Path) (docstore.Document, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if s.rdb == nil {
		return nil, errNotLoaded
	}
	body, err := s.rdb.Get(ctx, s.docKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return docstore.Document(body), nil
}

func (s *Store) Set(ctx context.Context, path docstore.Path, doc docstore.Document) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if s.rdb == nil {
		return errNotLoaded
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(path), []byte(doc), 0)
		pipe.ZAdd(ctx, s.childrenKey(path.Parent()), redis.Z{Score: 0, Member: path.Base()})
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path docstore.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if s.rdb == nil {
		return errNotLoaded
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(path))
		pipe.ZRem(ctx, s.childrenKey(path.Parent()), path.Base())
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Children(ctx context.Context, parent docstore.Path) ([]docstore.Entry, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if s.rdb == nil {
		return nil, errNotLoaded
	}
	keys, err := s.rdb.ZRangeByLex(ctx, s.childrenKey(parent), &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	docKeys := make([]string, len(keys))
	for i, key := range keys {
		child, err := parent.Child(key)
		if err != nil {
			return nil, err
		}
		docKeys[i] = s.docKey(child)
	}
	values, err := s.rdb.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}

	entries := make([]docstore.Entry, 0, len(keys))
	for i, v := range values {
		body, ok := v.(string)
		if !ok {
			// index entry without a document
			continue
		}
		entries = append(entries, docstore.Entry{Key: keys[i], Doc: docstore.Document(body)})
	}
	return entries, nil
}

func (s *Store) GenerateID(ctx context.Context, parent docstore.Path) (string, error) {
	return docstore.NewID()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.rdb == nil {
		return errNotLoaded
	}
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.rdb == nil {
		return nil
	}
	err := s.rdb.Close()
	s.rdb = nil
	return err
}
