package repository

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/godilite/termosti/internal/repository/models"
)

// Field names as written by the survey importer.
const (
	fieldTerm          = "Termo"
	fieldPeriod        = "Mensuracao"
	fieldParticipation = "Participacao"
)

// surveyDocument keeps period and participation raw: the importer wrote
// them as strings in some batches and as numbers in others.
type surveyDocument struct {
	Term          string        `bson:"Termo"`
	Period        bson.RawValue `bson:"Mensuracao"`
	Participation bson.RawValue `bson:"Participacao"`
}

// termFrequencyDocument carries the raw participation values of a term so
// they are averaged with the same numeric-prefix rule as the other stores.
type termFrequencyDocument struct {
	Term          string          `bson:"_id"`
	Count         int64           `bson:"count"`
	Participation []bson.RawValue `bson:"participation"`
}

// MongoRecordStore reads survey records from a MongoDB collection.
// *mongo.Collection is safe for concurrent use.
type MongoRecordStore struct {
	coll *mongo.Collection
}

func NewMongoRecordStore(coll *mongo.Collection) *MongoRecordStore {
	return &MongoRecordStore{coll: coll}
}

// Query returns documents whose term is in filter.Terms using $in.
func (s *MongoRecordStore) Query(ctx context.Context, filter models.RecordFilter) ([]models.SurveyRecord, error) {
	if filter.Terms != nil && len(filter.Terms) == 0 {
		return []models.SurveyRecord{}, nil
	}

	query := bson.M{}
	if filter.Terms != nil {
		query[fieldTerm] = bson.M{"$in": filter.Terms}
	}

	opts := options.Find()
	if filter.Sort == models.SortByTermPeriod {
		opts.SetSort(bson.D{{Key: fieldTerm, Value: 1}, {Key: fieldPeriod, Value: 1}})
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query Query: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []surveyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("iterate Query: %w", err)
	}

	results := make([]models.SurveyRecord, len(docs))
	for i, d := range docs {
		results[i] = models.SurveyRecord{
			Term:          d.Term,
			Period:        rawString(d.Period),
			Participation: rawString(d.Participation),
		}
	}
	return results, nil
}

// TopTerms groups the whole collection by term. Ties on count keep
// first-seen order, approximated by the smallest ObjectId.
func (s *MongoRecordStore) TopTerms(ctx context.Context, limit int) ([]models.TermFrequency, error) {
	cursor, err := s.coll.Aggregate(ctx, topTermsPipeline(limit))
	if err != nil {
		return nil, fmt.Errorf("query TopTerms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []termFrequencyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("iterate TopTerms: %w", err)
	}

	results := make([]models.TermFrequency, len(docs))
	for i, d := range docs {
		results[i] = models.TermFrequency{
			Term:             d.Term,
			Count:            d.Count,
			AvgParticipation: averageParticipation(d.Participation),
		}
	}
	return results, nil
}

func topTermsPipeline(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + fieldTerm},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "participation", Value: bson.D{{Key: "$push", Value: "$" + fieldParticipation}}},
			{Key: "firstSeen", Value: bson.D{{Key: "$min", Value: "$_id"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "firstSeen", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func averageParticipation(values []bson.RawValue) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += models.ParticipationValue(rawString(v))
	}
	return sum / float64(len(values))
}

// rawString renders a stored scalar the way it reads in the collection.
func rawString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeDouble:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case bson.TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case bson.TypeInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case bson.TypeDecimal128:
		return v.Decimal128().String()
	case bson.TypeDateTime:
		return v.Time().UTC().Format("01/2006")
	default:
		return ""
	}
}
