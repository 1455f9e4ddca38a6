package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"lsasearch/internal/constants"
)

const (
	docPrefix  = "doc:"
	counterKey = "doc_counter"
	metaPrefix = "meta:"
)

var ErrNotFound = errors.New("document not found")

// Storage keeps the corpus on disk, keyed by document index.
type Storage struct {
	db *leveldb.DB
}

func New(path string) (*Storage, error) {
	const op = "store.New"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{db: db}, nil
}

// NewInMemory - Same store without touching disk
func NewInMemory() (*Storage, error) {
	const op = "store.NewInMemory"

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// docKey zero-pads so iteration order matches index order.
func docKey(index int) []byte {
	return []byte(fmt.Sprintf("%s%010d", docPrefix, index))
}

// Put writes documents in one batch and keeps the counter at the highest index + 1.
func (s *Storage) Put(ctx context.Context, docs []constants.Document) error {
	const op = "store.Put"

	count, err := s.Count()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	batch := new(leveldb.Batch)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%s: encoding document %d: %w", op, doc.Index, err)
		}
		batch.Put(docKey(doc.Index), value)
		count = max(count, doc.Index+1)
	}
	batch.Put([]byte(counterKey), []byte(strconv.Itoa(count)))

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Get(_ context.Context, index int) (constants.Document, error) {
	const op = "store.Get"

	value, err := s.db.Get(docKey(index), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return constants.Document{}, fmt.Errorf("%s: %d: %w", op, index, ErrNotFound)
	}
	if err != nil {
		return constants.Document{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc constants.Document
	if err := json.Unmarshal(value, &doc); err != nil {
		return constants.Document{}, fmt.Errorf("%s: decoding document %d: %w", op, index, err)
	}
	return doc, nil
}

func (s *Storage) Count() (int, error) {
	value, err := s.db.Get([]byte(counterKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(value))
}

// All returns every stored document in index order.
func (s *Storage) All(ctx context.Context) ([]constants.Document, error) {
	const op = "store.All"

	iter := s.db.NewIterator(util.BytesPrefix([]byte(docPrefix)), nil)
	defer iter.Release()

	var docs []constants.Document
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var doc constants.Document
		if err := json.Unmarshal(iter.Value(), &doc); err != nil {
			return nil, fmt.Errorf("%s: decoding %s: %w", op, iter.Key(), err)
		}
		docs = append(docs, doc)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// GetMeta - A bookkeeping value next to the documents. Missing keys read as "".
func (s *Storage) GetMeta(key string) (string, error) {
	const op = "store.GetMeta"

	value, err := s.db.Get([]byte(metaPrefix+key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(value), nil
}

func (s *Storage) PutMeta(key string, value string) error {
	const op = "store.PutMeta"

	if err := s.db.Put([]byte(metaPrefix+key), []byte(value), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
