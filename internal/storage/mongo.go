package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"artboard/internal/domain"
)

const mongoTimeout = 10 * time.Second

// MongoStore implements domain.ArtboardStore and domain.BlockStore on
// MongoDB. Blocks live in their own collection keyed by artboard and
// reference.
type MongoStore struct {
	client    *mongo.Client
	artboards *mongo.Collection
	blocks    *mongo.Collection
}

var (
	_ domain.ArtboardStore = (*MongoStore)(nil)
	_ domain.BlockStore    = (*MongoStore)(nil)
)

type artboardDoc struct {
	ID       string          `bson:"_id"`
	Artboard domain.Artboard `bson:"artboard"`
}

type blockDoc struct {
	ID         string        `bson:"_id"`
	ArtboardID string        `bson:"artboardId"`
	Block      *domain.Block `bson:"block"`
	CreatedAt  time.Time     `bson:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
}

func blockID(artboardID, reference string) string {
	return artboardID + "/" + reference
}

// NewMongoStore connects to uri and uses database dbName (default "artboard").
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = "artboard"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:    client,
		artboards: db.Collection("artboards"),
		blocks:    db.Collection("blocks"),
	}
	if _, err := s.blocks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "artboardId", Value: 1}},
	}); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create block index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), mongoTimeout)
}

// ─── Artboards ───────────────────────────────────────────────

func (s *MongoStore) CreateArtboard(a *domain.Artboard) error {
	ctx, cancel := s.ctx()
	defer cancel()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := s.artboards.InsertOne(ctx, artboardDoc{ID: a.ID, Artboard: *a}); err != nil {
		return fmt.Errorf("create artboard: %w", err)
	}
	return nil
}

func (s *MongoStore) GetArtboard(id string) (*domain.Artboard, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	var doc artboardDoc
	err := s.artboards.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("artboard %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artboard: %w", err)
	}
	return &doc.Artboard, nil
}

func (s *MongoStore) ListArtboards() ([]domain.Artboard, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	cur, err := s.artboards.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "artboard.createdat", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list artboards: %w", err)
	}
	var docs []artboardDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list artboards: %w", err)
	}
	out := make([]domain.Artboard, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Artboard)
	}
	return out, nil
}

func (s *MongoStore) UpdateArtboard(a *domain.Artboard) error {
	ctx, cancel := s.ctx()
	defer cancel()
	a.UpdatedAt = time.Now().UTC()
	res, err := s.artboards.ReplaceOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, artboardDoc{ID: a.ID, Artboard: *a})
	if err != nil {
		return fmt.Errorf("update artboard: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("artboard %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteArtboard(id string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.artboards.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}

// ─── Blocks ──────────────────────────────────────────────────

func (s *MongoStore) CreateBlock(artboardID string, b *domain.Block) error {
	ctx, cancel := s.ctx()
	defer cancel()
	now := time.Now().UTC()
	doc := blockDoc{ID: blockID(artboardID, b.Reference), ArtboardID: artboardID, Block: b, CreatedAt: now, UpdatedAt: now}
	if _, err := s.blocks.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create block %s: %w", b.Reference, err)
	}
	return nil
}

func (s *MongoStore) GetBlock(artboardID, reference string) (*domain.Block, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	var doc blockDoc
	err := s.blocks.FindOne(ctx, bson.D{{Key: "_id", Value: blockID(artboardID, reference)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("block %s: %w", reference, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return doc.Block, nil
}

// ListBlocks returns the blocks of an artboard, bottom layer first.
func (s *MongoStore) ListBlocks(artboardID string) ([]*domain.Block, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	cur, err := s.blocks.Find(ctx, bson.D{{Key: "artboardId", Value: artboardID}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	var docs []blockDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	out := make([]*domain.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Block)
	}
	slices.SortStableFunc(out, func(a, b *domain.Block) int {
		switch {
		case a.Index == nil && b.Index == nil:
			return 0
		case a.Index == nil:
			return 1
		case b.Index == nil:
			return -1
		}
		return *a.Index - *b.Index
	})
	return out, nil
}

func (s *MongoStore) UpdateBlock(artboardID string, b *domain.Block) error {
	ctx, cancel := s.ctx()
	defer cancel()
	res, err := s.blocks.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: blockID(artboardID, b.Reference)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "block", Value: b},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("update block %s: %w", b.Reference, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("block %s: %w", b.Reference, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteBlock(artboardID, reference string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.blocks.DeleteOne(ctx, bson.D{{Key: "_id", Value: blockID(artboardID, reference)}})
	return err
}

func (s *MongoStore) DeleteBlocksByArtboard(artboardID string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	_, err := s.blocks.DeleteMany(ctx, bson.D{{Key: "artboardId", Value: artboardID}})
	return err
}

// ReplaceBlocks deletes and re-inserts every block of an artboard. Without
// a replica set this is not atomic.
func (s *MongoStore) ReplaceBlocks(artboardID string, blocks []*domain.Block) error {
	if err := s.DeleteBlocksByArtboard(artboardID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}
	if len(blocks) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	now := time.Now().UTC()
	docs := make([]any, 0, len(blocks))
	for _, b := range blocks {
		docs = append(docs, blockDoc{ID: blockID(artboardID, b.Reference), ArtboardID: artboardID, Block: b, CreatedAt: now, UpdatedAt: now})
	}
	if _, err := s.blocks.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
