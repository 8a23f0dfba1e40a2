package mongo

import (
	"context"
	"fmt"

	"github.com/pribylovaa/poem-comments/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rawProjection — только поля, нужные аудиту.
var rawProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "targetId", Value: 1},
	{Key: "targetType", Value: 1},
	{Key: "parentId", Value: 1},
	{Key: "level", Value: 1},
	{Key: "path", Value: 1},
}

// ScanTarget читает все комментарии цели без типизированного декодирования,
// чтобы неканонические формы parentId/path были видны аудиту.
func (m *Mongo) ScanTarget(ctx context.Context, target models.Target) ([]models.RawComment, error) {
	const op = "storage/mongo/ScanTarget"

	out, err := m.scanRaw(ctx, targetFilter(target))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// RawByIDs читает записи по id на любой цели.
func (m *Mongo) RawByIDs(ctx context.Context, ids []models.ID) ([]models.RawComment, error) {
	const op = "storage/mongo/RawByIDs"

	if len(ids) == 0 {
		return []models.RawComment{}, nil
	}

	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		oids = append(oids, id.ObjectID())
	}

	out, err := m.scanRaw(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (m *Mongo) scanRaw(ctx context.Context, filter bson.D) ([]models.RawComment, error) {
	cur, err := m.comments.Find(ctx, filter, options.Find().
		SetProjection(rawProjection).
		SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find: %w", classify(ctx, err))
	}
	defer cur.Close(ctx)

	out := []models.RawComment{}
	for cur.Next(ctx) {
		rc, ok := parseRaw(cur.Current)
		if !ok {
			// _id не ObjectID: на такую запись нельзя сослаться, аудиту она не интересна.
			continue
		}
		out = append(out, rc)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", classify(ctx, err))
	}

	return out, nil
}

// parseRaw разбирает документ и классифицирует форму parentId.
func parseRaw(raw bson.Raw) (models.RawComment, bool) {
	oid, ok := raw.Lookup("_id").ObjectIDOK()
	if !ok {
		return models.RawComment{}, false
	}

	rc := models.RawComment{ID: models.IDFromObjectID(oid)}
	rc.TargetID, _ = raw.Lookup("targetId").StringValueOK()
	targetType, _ := raw.Lookup("targetType").StringValueOK()
	rc.TargetType = models.TargetType(targetType)

	if v, err := raw.LookupErr("parentId"); err != nil {
		rc.ParentEncoding = models.ParentMissing
	} else {
		rc.ParentEncoding, rc.ParentRef, rc.RawParent = classifyParent(v)
	}

	if lvl, ok := raw.Lookup("level").AsInt32OK(); ok {
		rc.Level = lvl
	}

	rc.Path, rc.PathValid = parsePath(raw.Lookup("path"))

	return rc, true
}

func classifyParent(v bson.RawValue) (models.ParentEncoding, models.ID, string) {
	switch v.Type {
	case bson.TypeNull:
		return models.ParentNull, models.NoParent, ""
	case bson.TypeObjectID:
		oid := v.ObjectID()
		if oid.IsZero() {
			return models.ParentZeroObjectID, models.NoParent, oid.Hex()
		}

		return models.ParentObjectID, models.IDFromObjectID(oid), ""
	case bson.TypeString:
		s := v.StringValue()
		if s == "" {
			return models.ParentEmptyString, models.NoParent, ""
		}

		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return models.ParentHexString, models.IDFromObjectID(oid), s
		}

		return models.ParentOther, models.NoParent, s
	default:
		return models.ParentOther, models.NoParent, v.String()
	}
}

// parsePath — path обязан быть массивом ObjectID.
func parsePath(v bson.RawValue) ([]models.ID, bool) {
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, false
	}

	vals, err := arr.Values()
	if err != nil {
		return nil, false
	}

	out := make([]models.ID, 0, len(vals))
	for _, el := range vals {
		oid, ok := el.ObjectIDOK()
		if !ok || oid.IsZero() {
			return nil, false
		}
		out = append(out, models.IDFromObjectID(oid))
	}

	return out, true
}
