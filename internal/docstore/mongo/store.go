// Package mongo stores documents in a single MongoDB collection keyed by path.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/logger"
)

const collectionName = "documents"

var errNotLoaded = errors.New("mongo store not loaded")

type record struct {
	Path      string    `bson:"_id"`
	Parent    string    `bson:"parent"`
	Key       string    `bson:"key"`
	Body      bson.Raw  `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type Store struct {
	uri    string
	client *mongo.Client
	coll   *mongo.Collection
}

func New(uri string) *Store {
	return &Store{uri: uri}
}

// databaseName is the URI path, or the app name when the URI has none.
func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return constants.AppName
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return constants.AppName
}

func (s *Store) connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	s.client = client
	s.coll = client.Database(databaseName(s.uri)).Collection(collectionName)
	return nil
}

// Init connects and creates the parent/key index used by Children.
func (s *Store) Init(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "parent", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetName("parent_key"),
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	logger.Info("Mongo collection ready", "database", databaseName(s.uri), "collection", collectionName)
	return nil
}

func (s *Store) Load(ctx context.Context) error {
	return s.connect(ctx)
}

func (s *Store) Describe() string { return "mongodb" }

func (s *Store) Get(ctx context.Context, path docstore.Path) (docstore.Document, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	if s.coll == nil {
		return nil, errNotLoaded
	}
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": path.String()}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return toJSON(rec.Body)
}

func (s *Store) Set(ctx context.Context, path docstore.Path, doc docstore.Document) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if s.coll == nil {
		return errNotLoaded
	}
	body, err := fromJSON(doc)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	rec := record{
		Path:      path.String(),
		Parent:    path.Parent().String(),
		Key:       path.Base(),
		Body:      body,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rec.Path}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path docstore.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if s.coll == nil {
		return errNotLoaded
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": path.String()}); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Children(ctx context.Context, parent docstore.Path) ([]docstore.Entry, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if s.coll == nil {
		return nil, errNotLoaded
	}
	cursor, err := s.coll.Find(ctx, bson.M{"parent": parent.String()}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	defer cursor.Close(ctx)

	var entries []docstore.Entry
	for cursor.Next(ctx) {
		var rec record
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("list %s: %w", parent, err)
		}
		doc, err := toJSON(rec.Body)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", parent, err)
		}
		entries = append(entries, docstore.Entry{Key: rec.Key, Doc: doc})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	return entries, nil
}

// GenerateID returns an ObjectID hex string.
func (s *Store) GenerateID(ctx context.Context, parent docstore.Path) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return errNotLoaded
	}
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.client.Disconnect(ctx)
	s.client, s.coll = nil, nil
	return err
}

func fromJSON(doc docstore.Document) (bson.Raw, error) {
	var body bson.D
	if err := bson.UnmarshalExtJSON(doc, false, &body); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	return bson.Marshal(body)
}

func toJSON(body bson.Raw) (docstore.Document, error) {
	out, err := bson.MarshalExtJSON(body, false, false)
	if err != nil {
		return nil, err
	}
	return docstore.Document(out), nil
}
