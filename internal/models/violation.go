package models

// ParentEncoding — синтаксическая форма поля parentId в сохранённом документе.
type ParentEncoding string

const (
	// ParentObjectID — каноническая ссылка на родителя.
	ParentObjectID ParentEncoding = "object_id"
	// ParentNull — канонический «нет родителя».
	ParentNull ParentEncoding = "null"
	// ParentMissing — поле отсутствует (наследие старых импортов).
	ParentMissing ParentEncoding = "missing"
	// ParentEmptyString — пустая строка вместо null.
	ParentEmptyString ParentEncoding = "empty_string"
	// ParentZeroObjectID — нулевой ObjectID вместо null.
	ParentZeroObjectID ParentEncoding = "zero_object_id"
	// ParentHexString — ссылка на родителя строкой, а не ObjectID.
	ParentHexString ParentEncoding = "hex_string"
	// ParentOther — любой иной тип.
	ParentOther ParentEncoding = "other"
)

// IsNoParent сообщает, что кодировка означает «родителя нет» (в любой из форм).
func (e ParentEncoding) IsNoParent() bool {
	switch e {
	case ParentNull, ParentMissing, ParentEmptyString, ParentZeroObjectID:
		return true
	default:
		return false
	}
}

// RawComment — комментарий, прочитанный «как есть» для аудита.
// ParentRef заполнен, если ссылку удалось интерпретировать как идентификатор
// (ObjectID или hex-строка); ParentEncoding фиксирует исходную форму.
type RawComment struct {
	ID             ID
	TargetID       string
	TargetType     TargetType
	ParentRef      ID
	ParentEncoding ParentEncoding
	RawParent      string
	Level          int32
	Path           []ID
	PathValid      bool
}

// ViolationKind — тип нарушения инварианта.
type ViolationKind string

const (
	ViolationDanglingParent    ViolationKind = "dangling_parent"
	ViolationCrossTargetParent ViolationKind = "cross_target_parent"
	ViolationInvalidParentType ViolationKind = "invalid_parent_type"
	ViolationLevelMismatch     ViolationKind = "level_mismatch"
	ViolationPathMismatch      ViolationKind = "path_mismatch"
	ViolationMixedNoParent     ViolationKind = "mixed_no_parent_encoding"
)

// Violation — одно найденное нарушение.
// CommentID пуст для нарушений уровня коллекции (смешанные кодировки).
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	CommentID ID            `json:"commentId"`
	Detail    string        `json:"detail"`
}
