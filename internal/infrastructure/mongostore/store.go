// Package mongostore implementa el ledger sobre MongoDB: colección ledger_entries cuyo _id es la
// secuencia. Insertar la entrada seq+1 es el compare-and-swap del append: el índice único de _id
// deja pasar a un solo escritor por posición de la cadena.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerstore"
)

var _ repository.LedgerStore = (*Store)(nil)

const (
	entriesCollection = "ledger_entries"
	maxAppendRetries  = 64
)

// entryDoc documento de una entrada; _id es la secuencia.
type entryDoc struct {
	Seq       int64     `bson:"_id"`
	Key       string    `bson:"key"`
	Value     []byte    `bson:"value"`
	PrevHash  string    `bson:"prev_hash"`
	Hash      string    `bson:"hash"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store ledger sobre una base MongoDB.
type Store struct {
	client  *mongo.Client
	entries *mongo.Collection
}

// Connect abre el cliente, verifica conectividad y crea los índices.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("conectar MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	s := New(client, client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New construye el store sobre una base ya abierta.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:  client,
		entries: db.Collection(entriesCollection),
	}
}

// EnsureIndexes índice (key, _id desc) para Get y Scan por prefijo.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "key", Value: 1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("crear índice ledger_entries: %w", err)
	}
	return nil
}

// Session abre una sesión de Mongo, ejecuta fn con ella y la cierra siempre.
func (s *Store) Session(ctx context.Context, fn func(repository.LedgerSession) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return domain.WrapStorage("session", err)
	}
	defer sess.EndSession(ctx)
	return fn(&mongoSession{store: s, sess: sess})
}

func (s *Store) Ping(ctx context.Context) error {
	return domain.WrapStorage("ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoSession struct {
	store *Store
	sess  mongo.Session
}

func (m *mongoSession) ctx(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, m.sess)
}

// Put lee la última entrada e inserta la siguiente con _id = seq+1. Si otro escritor ocupó esa
// secuencia se reintenta sobre la nueva cola; un insert fallido no deja nada escrito.
func (m *mongoSession) Put(ctx context.Context, key string, value []byte) (*entity.Proof, error) {
	sc := m.ctx(ctx)
	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		last, err := m.last(sc)
		if err != nil {
			return nil, domain.WrapStorage("put", err)
		}
		doc := nextEntry(last, key, value, time.Now().UTC())
		_, err = m.store.entries.InsertOne(sc, doc)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return nil, domain.WrapStorage("put", err)
		}
		proof := ledgerstore.NewProof(doc.Seq, key, value, doc.PrevHash, doc.Hash)
		return &proof, nil
	}
	return nil, domain.WrapStorage("put", fmt.Errorf("contención en ledger_entries tras %d intentos", maxAppendRetries))
}

// last devuelve la entrada con mayor secuencia, o nil con el ledger vacío.
func (m *mongoSession) last(ctx context.Context) (*entryDoc, error) {
	var doc entryDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := m.store.entries.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// nextEntry encadena key/value detrás de last (génesis si last es nil).
func nextEntry(last *entryDoc, key string, value []byte, now time.Time) entryDoc {
	seq, prev := int64(1), ledgerstore.GenesisHash
	if last != nil {
		seq, prev = last.Seq+1, last.Hash
	}
	return entryDoc{
		Seq:       seq,
		Key:       key,
		Value:     value,
		PrevHash:  prev,
		Hash:      ledgerstore.ChainHash(prev, key, value),
		CreatedAt: now,
	}
}

func (m *mongoSession) Get(ctx context.Context, key string) (*repository.KVEntry, error) {
	var doc entryDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := m.store.entries.FindOne(m.ctx(ctx), bson.M{"key": key}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStorage("get", err)
	}
	e := toEntry(doc)
	return &e, nil
}

// Scan agrupa por clave quedándose con la versión más reciente.
func (m *mongoSession) Scan(ctx context.Context, prefix string) ([]repository.KVEntry, error) {
	sc := m.ctx(ctx)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"key": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$key"},
			{Key: "doc", Value: bson.M{"$first": "$$ROOT"}},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
	}
	cursor, err := m.store.entries.Aggregate(sc, pipeline)
	if err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	var docs []entryDoc
	if err := cursor.All(sc, &docs); err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	out := make([]repository.KVEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, toEntry(d))
	}
	return out, nil
}

func toEntry(d entryDoc) repository.KVEntry {
	return repository.KVEntry{
		Key:   d.Key,
		Value: d.Value,
		Proof: ledgerstore.NewProof(d.Seq, d.Key, d.Value, d.PrevHash, d.Hash),
	}
}
