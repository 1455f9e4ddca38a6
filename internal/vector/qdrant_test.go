package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"lsasearch/internal/constants"
)

// fakePoints - Only the calls Db makes. Anything else panics on the nil embedded client.
type fakePoints struct {
	qdrant.PointsClient
	upserts   []*qdrant.UpsertPoints
	status    qdrant.UpdateStatus
	search    *qdrant.SearchPoints
	hits      []*qdrant.ScoredPoint
	count     uint64
	searchErr error
}

func (f *fakePoints) Upsert(_ context.Context, in *qdrant.UpsertPoints, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	f.upserts = append(f.upserts, in)
	return &qdrant.PointsOperationResponse{Result: &qdrant.UpdateResult{Status: f.status}}, nil
}

func (f *fakePoints) Search(_ context.Context, in *qdrant.SearchPoints, _ ...grpc.CallOption) (*qdrant.SearchResponse, error) {
	f.search = in
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &qdrant.SearchResponse{Result: f.hits}, nil
}

func (f *fakePoints) Count(_ context.Context, in *qdrant.CountPoints, _ ...grpc.CallOption) (*qdrant.CountResponse, error) {
	return &qdrant.CountResponse{Result: &qdrant.CountResult{Count: f.count}}, nil
}

func TestDbUpsertBatches(t *testing.T) {
	fake := &fakePoints{status: qdrant.UpdateStatus_Completed}
	db := NewDb(fake, "newsgroups")

	vectors := make([]constants.DocumentVector, MaxUpsertBatch+3)
	for i := range vectors {
		vectors[i] = constants.DocumentVector{Index: i, Vector: []float32{float32(i), 1}}
	}
	require.NoError(t, db.Upsert(context.Background(), vectors))

	require.Len(t, fake.upserts, 2)
	assert.Len(t, fake.upserts[0].Points, MaxUpsertBatch)
	assert.Len(t, fake.upserts[1].Points, 3)
	assert.Equal(t, "newsgroups", fake.upserts[0].CollectionName)

	last := fake.upserts[1].Points[2]
	assert.Equal(t, uint64(MaxUpsertBatch+2), last.GetId().GetNum())
	assert.Equal(t, int64(MaxUpsertBatch+2), last.GetPayload()["Index"].GetIntegerValue())
}

func TestDbUpsertRejectsBadStatus(t *testing.T) {
	fake := &fakePoints{status: qdrant.UpdateStatus_UnknownUpdateStatus}
	db := NewDb(fake, "newsgroups")

	err := db.Upsert(context.Background(), []constants.DocumentVector{{Index: 0, Vector: []float32{1}}})
	assert.Error(t, err)
}

func TestDbSearch(t *testing.T) {
	fake := &fakePoints{hits: []*qdrant.ScoredPoint{
		{
			Id:      qdrant.NewIDNum(12),
			Score:   0.75,
			Payload: map[string]*qdrant.Value{"Index": {Kind: &qdrant.Value_IntegerValue{IntegerValue: 12}}},
		},
		{Id: qdrant.NewIDNum(4), Score: 0.5},
	}}
	db := NewDb(fake, "newsgroups")

	got, err := db.Search(context.Background(), []float32{0.6, 0.8}, 5)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), fake.search.Limit)
	assert.Equal(t, []float32{0.6, 0.8}, fake.search.Vector)
	require.Len(t, got, 2)
	assert.Equal(t, 12, got[0].Index)
	assert.InDelta(t, 0.75, got[0].Score, 1e-6)
	assert.Equal(t, 4, got[1].Index)
}

func TestDbSearchError(t *testing.T) {
	fake := &fakePoints{searchErr: errors.New("unavailable")}
	_, err := NewDb(fake, "newsgroups").Search(context.Background(), []float32{1}, 5)
	assert.ErrorContains(t, err, "unavailable")
}

func TestDbSearchPointWithoutIndex(t *testing.T) {
	fake := &fakePoints{hits: []*qdrant.ScoredPoint{{Id: qdrant.NewID("5f0c8f3e-0000-0000-0000-000000000000")}}}
	_, err := NewDb(fake, "newsgroups").Search(context.Background(), []float32{1}, 1)
	assert.Error(t, err)
}

func TestDbCount(t *testing.T) {
	count, err := NewDb(&fakePoints{count: 42}, "newsgroups").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

// fakeCollections - A single collection, optionally already there with some vector size.
type fakeCollections struct {
	qdrant.CollectionsClient
	size    uint64
	exists  bool
	created []*qdrant.CreateCollection
	deleted []string
}

func (f *fakeCollections) Get(_ context.Context, in *qdrant.GetCollectionInfoRequest, _ ...grpc.CallOption) (*qdrant.GetCollectionInfoResponse, error) {
	if !f.exists {
		return nil, status.Error(codes.NotFound, "collection "+in.CollectionName+" not found")
	}
	return &qdrant.GetCollectionInfoResponse{Result: &qdrant.CollectionInfo{
		Config: &qdrant.CollectionConfig{Params: &qdrant.CollectionParams{
			VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{Size: f.size, Distance: qdrant.Distance_Cosine},
			}},
		}},
	}}, nil
}

func (f *fakeCollections) Create(_ context.Context, in *qdrant.CreateCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	f.exists, f.size = true, in.GetVectorsConfig().GetParams().GetSize()
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(_ context.Context, in *qdrant.DeleteCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.deleted = append(f.deleted, in.CollectionName)
	f.exists = false
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func TestEnsureCollection(t *testing.T) {
	t.Run("missing collection is created", func(t *testing.T) {
		fake := &fakeCollections{}
		require.NoError(t, EnsureCollection(context.Background(), fake, "newsgroups", 111))

		require.Len(t, fake.created, 1)
		assert.Equal(t, "newsgroups", fake.created[0].CollectionName)
		assert.Equal(t, uint64(111), fake.created[0].GetVectorsConfig().GetParams().GetSize())
		assert.Equal(t, qdrant.Distance_Cosine, fake.created[0].GetVectorsConfig().GetParams().GetDistance())
		assert.Empty(t, fake.deleted)
	})

	t.Run("matching size is kept", func(t *testing.T) {
		fake := &fakeCollections{exists: true, size: 111}
		require.NoError(t, EnsureCollection(context.Background(), fake, "newsgroups", 111))

		assert.Empty(t, fake.created)
		assert.Empty(t, fake.deleted)
	})

	t.Run("other size is recreated", func(t *testing.T) {
		fake := &fakeCollections{exists: true, size: 2}
		require.NoError(t, EnsureCollection(context.Background(), fake, "newsgroups", 3))

		assert.Equal(t, []string{"newsgroups"}, fake.deleted)
		require.Len(t, fake.created, 1)
		assert.Equal(t, uint64(3), fake.size)
	})
}

type unavailableCollections struct{ qdrant.CollectionsClient }

func (unavailableCollections) Get(context.Context, *qdrant.GetCollectionInfoRequest, ...grpc.CallOption) (*qdrant.GetCollectionInfoResponse, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func TestEnsureCollectionUnavailable(t *testing.T) {
	err := EnsureCollection(context.Background(), unavailableCollections{}, "newsgroups", 3)
	assert.Equal(t, codes.Unavailable, status.Code(errors.Unwrap(err)))
}
