package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/godilite/termosti/internal/repository/models"
)

func rawValue(t *testing.T, v any) bson.RawValue {
	t.Helper()
	typ, data, err := bson.MarshalValue(v)
	require.NoError(t, err)
	return bson.RawValue{Type: typ, Value: data}
}

func TestRawString(t *testing.T) {
	dec, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "01/2021", "01/2021"},
		{"double", 12.5, "12.5"},
		{"whole double", 30.0, "30"},
		{"int32", int32(7), "7"},
		{"int64", int64(2021), "2021"},
		{"decimal", dec, "12.50"},
		{"datetime", time.Date(2022, time.January, 15, 0, 0, 0, 0, time.UTC), "01/2022"},
		{"bool is not a scalar we read", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rawString(rawValue(t, tt.in)))
		})
	}

	t.Run("missing field", func(t *testing.T) {
		assert.Equal(t, "", rawString(bson.RawValue{}))
	})
}

func TestDecodeSurveyDocument(t *testing.T) {
	data, err := bson.Marshal(bson.D{
		{Key: fieldTerm, Value: "python"},
		{Key: fieldPeriod, Value: "Jan 2021"},
		{Key: fieldParticipation, Value: 42.25},
	})
	require.NoError(t, err)

	var doc surveyDocument
	require.NoError(t, bson.Unmarshal(data, &doc))

	assert.Equal(t, "python", doc.Term)
	assert.Equal(t, "Jan 2021", rawString(doc.Period))
	assert.Equal(t, "42.25", rawString(doc.Participation))
}

func TestTopTermsPipeline(t *testing.T) {
	p := topTermsPipeline(80)
	require.Len(t, p, 3)

	assert.Equal(t, "$group", p[0][0].Key)
	group := p[0][0].Value.(bson.D)
	assert.Contains(t, group, bson.E{Key: "participation", Value: bson.D{{Key: "$push", Value: "$Participacao"}}})
	assert.Equal(t, "$sort", p[1][0].Key)
	assert.Equal(t, bson.D{{Key: "count", Value: -1}, {Key: "firstSeen", Value: 1}}, p[1][0].Value)
	assert.Equal(t, bson.E{Key: "$limit", Value: 80}, p[2][0])
}

func TestAverageParticipation(t *testing.T) {
	t.Run("numeric prefix of mixed values", func(t *testing.T) {
		values := []bson.RawValue{
			rawValue(t, "12.5%"),
			rawValue(t, 7.5),
			rawValue(t, int32(3)),
			rawValue(t, "n/a"),
		}

		assert.InDelta(t, 23.0/4, averageParticipation(values), 1e-9)
	})

	t.Run("no values", func(t *testing.T) {
		assert.Equal(t, 0.0, averageParticipation(nil))
	})
}

func mockNamespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoRecordStore_Query(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filters by term and sorts by term then period", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace(mt), mtest.FirstBatch,
			bson.D{{Key: "Termo", Value: "go"}, {Key: "Mensuracao", Value: "01/2021"}, {Key: "Participacao", Value: "12.5%"}},
			bson.D{{Key: "Termo", Value: "java"}, {Key: "Mensuracao", Value: int32(2022)}, {Key: "Participacao", Value: 30.0}},
		))
		store := NewMongoRecordStore(mt.Coll)

		got, err := store.Query(context.Background(), models.RecordFilter{
			Terms: []string{"go", "java"},
			Sort:  models.SortByTermPeriod,
		})

		require.NoError(mt, err)
		assert.Equal(mt, []models.SurveyRecord{
			{Term: "go", Period: "01/2021", Participation: "12.5%"},
			{Term: "java", Period: "2022", Participation: "30"},
		}, got)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)

		in, err := started.Command.Lookup("filter", "Termo", "$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, in, 2)
		assert.Equal(mt, "go", in[0].StringValue())
		assert.Equal(mt, "java", in[1].StringValue())

		var sort bson.D
		require.NoError(mt, started.Command.Lookup("sort").Unmarshal(&sort))
		require.Len(mt, sort, 2)
		assert.Equal(mt, "Termo", sort[0].Key)
		assert.Equal(mt, "Mensuracao", sort[1].Key)
	})

	mt.Run("nil terms select everything unsorted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace(mt), mtest.FirstBatch,
			bson.D{{Key: "Termo", Value: "rust"}, {Key: "Mensuracao", Value: "06/2020"}, {Key: "Participacao", Value: int64(4)}},
		))
		store := NewMongoRecordStore(mt.Coll)

		got, err := store.Query(context.Background(), models.RecordFilter{})

		require.NoError(mt, err)
		assert.Equal(mt, []models.SurveyRecord{{Term: "rust", Period: "06/2020", Participation: "4"}}, got)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		filter, err := started.Command.LookupErr("filter")
		require.NoError(mt, err)
		elems, err := filter.Document().Elements()
		require.NoError(mt, err)
		assert.Empty(mt, elems)
		_, err = started.Command.LookupErr("sort")
		assert.Error(mt, err)
	})

	mt.Run("empty terms select nothing without a round trip", func(mt *mtest.T) {
		store := NewMongoRecordStore(mt.Coll)

		got, err := store.Query(context.Background(), models.RecordFilter{Terms: []string{}})

		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("command error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "unknown operator",
		}))
		store := NewMongoRecordStore(mt.Coll)

		_, err := store.Query(context.Background(), models.RecordFilter{Terms: []string{"go"}})

		require.Error(mt, err)
		assert.True(mt, strings.HasPrefix(err.Error(), "query Query: "), err.Error())
		var cmdErr mongo.CommandError
		require.True(mt, errors.As(err, &cmdErr))
		assert.Equal(mt, int32(2), cmdErr.Code)
	})
}

func TestMongoRecordStore_TopTerms(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("keeps server order and averages participation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace(mt), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "java"},
				{Key: "count", Value: int32(3)},
				{Key: "participation", Value: bson.A{"12.5%", 7.5, int32(3)}},
			},
			bson.D{
				{Key: "_id", Value: "go"},
				{Key: "count", Value: int32(1)},
				{Key: "participation", Value: bson.A{"n/a"}},
			},
			bson.D{
				{Key: "_id", Value: "rust"},
				{Key: "count", Value: int32(1)},
				{Key: "participation", Value: bson.A{int64(9)}},
			},
		))
		store := NewMongoRecordStore(mt.Coll)

		got, err := store.TopTerms(context.Background(), 3)

		require.NoError(mt, err)
		require.Len(mt, got, 3)
		assert.Equal(mt, []string{"java", "go", "rust"}, []string{got[0].Term, got[1].Term, got[2].Term})
		assert.Equal(mt, int64(3), got[0].Count)
		assert.InDelta(mt, 23.0/3, got[0].AvgParticipation, 1e-9)
		assert.Equal(mt, 0.0, got[1].AvgParticipation)
		assert.Equal(mt, 9.0, got[2].AvgParticipation)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "aggregate", started.CommandName)
		stages, err := started.Command.Lookup("pipeline").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, stages, 3)
		var limit int64
		require.NoError(mt, stages[2].Document().Lookup("$limit").Unmarshal(&limit))
		assert.Equal(mt, int64(3), limit)
	})

	mt.Run("command error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))
		store := NewMongoRecordStore(mt.Coll)

		_, err := store.TopTerms(context.Background(), 5)

		require.Error(mt, err)
		assert.True(mt, strings.HasPrefix(err.Error(), "query TopTerms: "), err.Error())
	})
}
