package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidReference — идентификатор не удалось привести к каноническому виду.
var ErrInvalidReference = errors.New("invalid reference")

// ID — единственное каноническое представление идентификатора комментария.
// Используется везде: в хранилище, в проводных структурах и в фильтрах запросов.
//
// Нулевое значение — это NoParent, единственный способ сказать «родителя нет».
// Кодирование:
//   - BSON: NoParent <-> null, иначе <-> ObjectID; любые другие типы (string, int...) — ошибка;
//   - JSON: NoParent <-> null, иначе <-> hex-строка из 24 символов.
type ID struct {
	oid primitive.ObjectID
}

// NoParent — сентинел «нет родителя» (корневой комментарий).
var NoParent = ID{}

// NewID генерирует новый идентификатор. Вызывается только хранилищем.
func NewID() ID {
	return ID{oid: primitive.NewObjectID()}
}

// IDFromObjectID оборачивает ObjectID драйвера. Нулевой ObjectID трактуется как NoParent.
func IDFromObjectID(oid primitive.ObjectID) ID {
	return ID{oid: oid}
}

// ParseID разбирает внешний идентификатор (24 hex-символа).
// Пустая строка и любой другой формат — ErrInvalidReference.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoParent, fmt.Errorf("%w: empty id", ErrInvalidReference)
	}

	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return NoParent, fmt.Errorf("%w: %q is not an object id", ErrInvalidReference, s)
	}

	if oid.IsZero() {
		return NoParent, fmt.Errorf("%w: zero object id", ErrInvalidReference)
	}

	return ID{oid: oid}, nil
}

// ParseParentRef — единственная граница, на которой «пустой» родитель из запроса
// схлопывается в NoParent. Непустое значение обязано быть корректным ID.
func ParseParentRef(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return NoParent, nil
	}

	return ParseID(s)
}

// IsZero сообщает, что это NoParent.
func (id ID) IsZero() bool { return id.oid.IsZero() }

// Equal — сравнение только в каноническом типе.
func (id ID) Equal(other ID) bool { return id.oid == other.oid }

// ObjectID возвращает значение для фильтров драйвера.
func (id ID) ObjectID() primitive.ObjectID { return id.oid }

// String возвращает hex или "" для NoParent.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}

	return id.oid.Hex()
}

// Compare задаёт полный порядок на идентификаторах (по байтам ObjectID).
func (id ID) Compare(other ID) int {
	return bytes.Compare(id.oid[:], other.oid[:])
}

// MarshalBSONValue реализует bson.ValueMarshaler.
func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if id.IsZero() {
		return bson.TypeNull, nil, nil
	}

	return bson.MarshalValue(id.oid)
}

// UnmarshalBSONValue реализует bson.ValueUnmarshaler.
func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeNull:
		*id = NoParent
		return nil
	case bson.TypeObjectID:
		oid, ok := bson.RawValue{Type: t, Value: data}.ObjectIDOK()
		if !ok {
			return fmt.Errorf("%w: malformed object id", ErrInvalidReference)
		}

		*id = ID{oid: oid}
		return nil
	default:
		return fmt.Errorf("%w: unexpected bson type %s", ErrInvalidReference, t)
	}
}

// MarshalJSON реализует json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(id.oid.Hex())
}

// UnmarshalJSON реализует json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = NoParent
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	parsed, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
