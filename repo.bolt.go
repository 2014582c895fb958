package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

// CatalogMirror is a local read-only copy of the book catalog
// fed by the change queues.
type CatalogMirror interface {
	Put(ctx context.Context, book Book) error
	Remove(ctx context.Context, id int64) error
	GetOne(ctx context.Context, id int64) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}

type boltCatalogMirror struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the mirror database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltCatalogMirror provides an instance of bolt-based catalog mirror.
func NewBoltCatalogMirror(logger *zap.Logger, config *BoltDBConfig, client *bolt.DB) CatalogMirror {
	return &boltCatalogMirror{
		logger: logger,
		client: client,
		config: config,
	}
}

// itob encodes the id as big endian so cursor order follows id order.
func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// Put inserts or replaces the mirrored copy of a book.
func (bm *boltCatalogMirror) Put(_ context.Context, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Put(itob(book.ID), bookBytes)
	})
}

// Remove drops the mirrored copy of a book. Missing keys are ignored.
func (bm *boltCatalogMirror) Remove(_ context.Context, id int64) error {
	return bm.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bm.config.BucketName)).Delete(itob(id))
	})
}

// GetOne retrieves a mirrored book based on its ID.
func (bm *boltCatalogMirror) GetOne(_ context.Context, id int64) (Book, error) {
	var book Book
	tx, err := bm.client.Begin(false)
	if err != nil {
		return book, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bm.config.BucketName)).Get(itob(id))
	if result == nil {
		return book, ErrBookNotFound
	}
	err = json.Unmarshal(result, &book)
	return book, err
}

// GetAll retrieves every mirrored book ordered by ID.
func (bm *boltCatalogMirror) GetAll(_ context.Context) ([]Book, error) {
	tx, err := bm.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bm.config.BucketName)).Cursor()

	books := []Book{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}
