package source

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tverrors "github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "topovis"
	DefaultMongoCollection = "graphs"
)

// MongoConfig locates one stored graph.
type MongoConfig struct {
	URI        string `toml:"uri" json:"uri,omitempty"`
	Database   string `toml:"database" json:"database,omitempty"`
	Collection string `toml:"collection" json:"collection,omitempty"`
	Name       string `toml:"name" json:"name,omitempty"`
}

// Record is the stored shape: a name and the description under "graph".
type Record struct {
	Name  string         `bson:"name" json:"name"`
	Graph graph.Document `bson:"graph" json:"graph"`
}

// Mongo reads the record whose name matches.
type Mongo struct {
	cfg MongoConfig

	mu     sync.Mutex
	client *mongo.Client
}

// NewMongo returns a source for cfg. The client connects on first use.
func NewMongo(cfg MongoConfig) *Mongo {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	return &Mongo{cfg: cfg}
}

func (s *Mongo) String() string {
	return "mongodb://" + s.cfg.Database + "/" + s.cfg.Collection + "/" + s.cfg.Name
}

func (s *Mongo) collection(ctx context.Context) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URI))
		if err != nil {
			return nil, err
		}
		s.client = client
	}
	return s.client.Database(s.cfg.Database).Collection(s.cfg.Collection), nil
}

func (s *Mongo) record(ctx context.Context) (Record, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return Record{}, tverrors.Wrap(tverrors.ErrCodeFetch, err, "connect %s", s)
	}
	var rec Record
	err = coll.FindOne(ctx, bson.M{"name": s.cfg.Name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, tverrors.New(tverrors.ErrCodeFetch, "%s: no such graph", s)
	}
	if err != nil {
		return Record{}, tverrors.Wrap(tverrors.ErrCodeFetch, err, "find %s", s)
	}
	return rec, nil
}

func (s *Mongo) Fetch(ctx context.Context) (graph.Document, error) {
	rec, err := s.record(ctx)
	if err != nil {
		return graph.Document{}, err
	}
	return rec.Graph, nil
}

// Raw returns the stored description re-encoded as JSON.
func (s *Mongo) Raw(ctx context.Context) ([]byte, error) {
	rec, err := s.record(ctx)
	if err != nil {
		return nil, err
	}
	data, err := rec.Graph.Marshal()
	if err != nil {
		return nil, tverrors.Wrap(tverrors.ErrCodeFetch, err, "encode %s", s)
	}
	return data, nil
}

// Close disconnects the client.
func (s *Mongo) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	return err
}
