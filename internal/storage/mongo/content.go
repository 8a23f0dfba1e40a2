package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/poem-comments/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// contentCollections — где хранится каждый тип комментируемого контента.
var contentCollections = map[models.TargetType]string{
	models.TargetGuwen:    "guwen",
	models.TargetCreation: "creations",
	models.TargetSentence: "sentences",
	models.TargetWriter:   "writers",
}

// TargetExists проверяет, что комментируемый контент существует.
// Идентификатор контента обычно ObjectID; иначе ищем строковый _id.
func (m *Mongo) TargetExists(ctx context.Context, target models.Target) (bool, error) {
	const op = "storage/mongo/TargetExists"

	coll, ok := contentCollections[target.Type]
	if !ok {
		return false, nil
	}

	var key interface{} = target.ID
	if oid, err := primitive.ObjectIDFromHex(target.ID); err == nil {
		key = oid
	}

	err := m.content.Collection(coll).FindOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongodriver.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}
}
