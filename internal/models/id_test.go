package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()

	id, err := ParseID(oid.Hex())
	require.NoError(t, err)
	require.Equal(t, oid, id.ObjectID())
	require.Equal(t, oid.Hex(), id.String())

	id, err = ParseID("  " + oid.Hex() + " ")
	require.NoError(t, err)
	require.True(t, id.Equal(IDFromObjectID(oid)))

	for _, bad := range []string{"", "   ", "abc", "64d0c0ffee0000000000aaa", "zzzzzzzzzzzzzzzzzzzzzzzz", "000000000000000000000000"} {
		_, err := ParseID(bad)
		require.ErrorIs(t, err, ErrInvalidReference, bad)
	}
}

// Пустая ссылка на родителя — единственный путь к NoParent из внешнего ввода.
func TestParseParentRef(t *testing.T) {
	t.Parallel()

	for _, empty := range []string{"", " ", "\t"} {
		id, err := ParseParentRef(empty)
		require.NoError(t, err)
		require.True(t, id.IsZero())
		require.True(t, id.Equal(NoParent))
	}

	_, err := ParseParentRef("null")
	require.ErrorIs(t, err, ErrInvalidReference)

	oid := primitive.NewObjectID()
	id, err := ParseParentRef(oid.Hex())
	require.NoError(t, err)
	require.False(t, id.IsZero())
}

func TestID_Compare(t *testing.T) {
	t.Parallel()

	a, _ := ParseID("64d0c0ffee0000000000aaaa")
	b, _ := ParseID("64d0c0ffee0000000000bbbb")

	require.Negative(t, a.Compare(b))
	require.Positive(t, b.Compare(a))
	require.Zero(t, a.Compare(a))
	require.Negative(t, NoParent.Compare(a))
}

type bsonDoc struct {
	ParentID ID   `bson:"parentId"`
	Path     []ID `bson:"path"`
}

func TestID_BSON(t *testing.T) {
	t.Parallel()

	parent := NewID()

	// NoParent пишется как null, не как отсутствующее поле и не как нулевой ObjectID.
	raw, err := bson.Marshal(bsonDoc{ParentID: NoParent, Path: []ID{}})
	require.NoError(t, err)
	v, err := bson.Raw(raw).LookupErr("parentId")
	require.NoError(t, err)
	require.Equal(t, bson.TypeNull, v.Type)

	raw, err = bson.Marshal(bsonDoc{ParentID: parent, Path: []ID{parent}})
	require.NoError(t, err)
	require.Equal(t, bson.TypeObjectID, bson.Raw(raw).Lookup("parentId").Type)

	var back bsonDoc
	require.NoError(t, bson.Unmarshal(raw, &back))
	require.True(t, back.ParentID.Equal(parent))
	require.Len(t, back.Path, 1)
	require.True(t, back.Path[0].Equal(parent))
}

func TestID_BSON_RejectsForeignTypes(t *testing.T) {
	t.Parallel()

	for _, val := range []any{parentHex(), "", int32(1)} {
		raw, err := bson.Marshal(bson.D{{Key: "parentId", Value: val}})
		require.NoError(t, err)

		var doc bsonDoc
		require.ErrorIs(t, bson.Unmarshal(raw, &doc), ErrInvalidReference)
	}
}

func parentHex() string { return primitive.NewObjectID().Hex() }

func TestID_JSON(t *testing.T) {
	t.Parallel()

	id := NewID()

	type wire struct {
		ID       ID `json:"id"`
		ParentID ID `json:"parentId"`
	}

	b, err := json.Marshal(wire{ID: id})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"`+id.String()+`","parentId":null}`, string(b))

	var back wire
	require.NoError(t, json.Unmarshal(b, &back))
	require.True(t, back.ID.Equal(id))
	require.True(t, back.ParentID.IsZero())

	require.ErrorIs(t, json.Unmarshal([]byte(`{"id":"nope"}`), &back), ErrInvalidReference)
	require.ErrorIs(t, json.Unmarshal([]byte(`{"id":42}`), &back), ErrInvalidReference)
}

func TestTarget_Normalize(t *testing.T) {
	t.Parallel()

	got := Target{ID: " 42 ", Type: " Guwen "}.Normalize()
	require.Equal(t, Target{ID: "42", Type: TargetGuwen}, got)
	require.True(t, got.Type.Valid())
	require.False(t, TargetType("poem").Valid())
}

func TestPageParams_Skip(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, 0, PageParams{Page: 0, PageSize: 20}.Skip())
	require.EqualValues(t, 0, PageParams{Page: 1, PageSize: 20}.Skip())
	require.EqualValues(t, 40, PageParams{Page: 3, PageSize: 20}.Skip())
}
