package vector

import (
	"context"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"lsasearch/internal/constants"
)

const (
	MaxUpsertBatch = 50
	indexPayload   = "Index"
)

// Db - Qdrant-backed Index. Point ids are the document indices.
type Db struct {
	Client     qdrant.PointsClient
	Collection string
	conn       *grpc.ClientConn
}

// Connect - Dial qdrant's grpc port and make sure the collection exists with the right size.
func Connect(ctx context.Context, addr string, collection string, dims int) (*Db, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dialing qdrant: %w", err)
	}

	if err := EnsureCollection(ctx, qdrant.NewCollectionsClient(conn), collection, dims); err != nil {
		conn.Close()
		return nil, err
	}

	db := NewDb(qdrant.NewPointsClient(conn), collection)
	db.conn = conn
	return db, nil
}

// EnsureCollection creates the collection if it is missing. One whose vector size is not dims
// holds points from another fit and is dropped and created again, empty.
func EnsureCollection(ctx context.Context, client qdrant.CollectionsClient, collection string, dims int) error {
	info, err := client.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: collection})
	switch {
	case status.Code(err) == codes.NotFound:
	case err != nil:
		return fmt.Errorf("getting collection %s: %w", collection, err)
	default:
		size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size == uint64(dims) {
			return nil
		}
		_, err = client.Delete(ctx, &qdrant.DeleteCollection{CollectionName: collection})
		if err != nil {
			return fmt.Errorf("dropping collection %s (size %d, want %d): %w", collection, size, dims, err)
		}
	}

	_, err = client.Create(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dims),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	return nil
}

func NewDb(client qdrant.PointsClient, collection string) *Db {
	return &Db{Client: client, Collection: collection}
}

func (db *Db) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Upsert - Writes in batches of MaxUpsertBatch points.
func (db *Db) Upsert(ctx context.Context, vectors []constants.DocumentVector) error {
	for start := 0; start < len(vectors); start += MaxUpsertBatch {
		end := min(start+MaxUpsertBatch, len(vectors))
		if err := db.upsertBatch(ctx, vectors[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (db *Db) upsertBatch(ctx context.Context, vectors []constants.DocumentVector) error {
	points := make([]*qdrant.PointStruct, len(vectors))
	for i, v := range vectors {
		points[i] = toPoint(v)
	}

	upsert, err := db.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	getStatus := upsert.GetResult().GetStatus()
	if getStatus != qdrant.UpdateStatus_Acknowledged && getStatus != qdrant.UpdateStatus_Completed {
		return fmt.Errorf("error adding documents to vector db. status: %d", getStatus)
	}
	return nil
}

func toPoint(v constants.DocumentVector) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(v.Index)),
		Vectors: qdrant.NewVectors(v.Vector...),
		Payload: map[string]*qdrant.Value{
			indexPayload: {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v.Index)}},
		},
	}
}

func (db *Db) Search(ctx context.Context, query []float32, limit int) ([]constants.ScoredDocument, error) {
	resp, err := db.Client.Search(ctx, &qdrant.SearchPoints{
		CollectionName: db.Collection,
		Vector:         query,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		Limit:          uint64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", db.Collection, err)
	}

	scored := make([]constants.ScoredDocument, len(resp.GetResult()))
	for i, hit := range resp.GetResult() {
		index, err := pointIndex(hit)
		if err != nil {
			return nil, err
		}
		scored[i] = constants.ScoredDocument{Index: index, Score: float64(hit.GetScore())}
	}
	return scored, nil
}

// pointIndex prefers the payload and falls back to the numeric point id.
func pointIndex(hit *qdrant.ScoredPoint) (int, error) {
	if val, ok := hit.GetPayload()[indexPayload]; ok {
		if _, isInt := val.GetKind().(*qdrant.Value_IntegerValue); isInt {
			return int(val.GetIntegerValue()), nil
		}
	}
	if id := hit.GetId(); id != nil {
		if _, isNum := id.GetPointIdOptions().(*qdrant.PointId_Num); isNum {
			return int(id.GetNum()), nil
		}
	}
	return 0, fmt.Errorf("point without a document index")
}

func (db *Db) Count(ctx context.Context) (int, error) {
	resp, err := db.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.Collection,
		Exact:          proto.Bool(true), // ensures accurate count
	})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", db.Collection, err)
	}
	return int(resp.GetResult().GetCount()), nil
}
