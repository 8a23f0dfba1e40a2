// Package models содержит доменные сущности сервиса комментариев.
package models

import (
	"strings"
	"time"
)

// TargetType — тип комментируемого контента.
type TargetType string

const (
	TargetGuwen    TargetType = "guwen"
	TargetCreation TargetType = "creation"
	TargetSentence TargetType = "sentence"
	TargetWriter   TargetType = "writer"
)

// Valid сообщает, входит ли тип в допустимое множество.
func (t TargetType) Valid() bool {
	switch t {
	case TargetGuwen, TargetCreation, TargetSentence, TargetWriter:
		return true
	default:
		return false
	}
}

// Target — пара (targetId, targetType), к которой привязаны комментарии.
// TargetID непрозрачен для сервиса: его существование проверяет контент-коллаборатор.
type Target struct {
	ID   string
	Type TargetType
}

// Normalize обрезает пробелы и приводит тип к нижнему регистру.
func (t Target) Normalize() Target {
	return Target{
		ID:   strings.TrimSpace(t.ID),
		Type: TargetType(strings.ToLower(strings.TrimSpace(string(t.Type)))),
	}
}

// Comment — доменная модель комментария (MongoDB, коллекция comments).
// Важно:
//   - ID назначает хранилище; ParentID — NoParent для корня;
//   - Level и Path вычисляются при создании (hierarchy.ComputeLevelAndPath) и не меняются;
//   - ReplyCount — число прямых детей, обновляется в той же транзакции, что и вставка/удаление ребёнка;
//   - UserID — автор (0 — не передан шлюзом).
type Comment struct {
	ID         ID         `bson:"_id"        json:"id"`
	TargetID   string     `bson:"targetId"   json:"targetId"`
	TargetType TargetType `bson:"targetType" json:"targetType"`
	UserID     int64      `bson:"userId"     json:"userId,omitempty"`
	Content    string     `bson:"content"    json:"content"`
	ParentID   ID         `bson:"parentId"   json:"parentId"`
	Level      int32      `bson:"level"      json:"level"`
	Path       []ID       `bson:"path"       json:"path"`
	ReplyCount int32      `bson:"replyCount" json:"replyCount"`
	LikeCount  int32      `bson:"likeCount"  json:"likeCount"`
	CreatedAt  time.Time  `bson:"createdAt"  json:"createdAt"`
}

// Target возвращает цель комментария.
func (c Comment) Target() Target {
	return Target{ID: c.TargetID, Type: c.TargetType}
}

// IsTopLevel — корневой комментарий.
func (c Comment) IsTopLevel() bool { return c.ParentID.IsZero() }

// CommentNode — комментарий с вложенными ответами.
type CommentNode struct {
	Comment
	Children []CommentNode `json:"children"`
}

// SortKey — поле сортировки корневых комментариев.
type SortKey string

const (
	SortByCreatedAt  SortKey = "createdAt"
	SortByLikeCount  SortKey = "likeCount"
	SortByReplyCount SortKey = "replyCount"
)

// Valid сообщает, поддерживается ли ключ.
func (k SortKey) Valid() bool {
	switch k {
	case SortByCreatedAt, SortByLikeCount, SortByReplyCount:
		return true
	default:
		return false
	}
}

// SortDir — направление сортировки.
type SortDir int

const (
	SortDesc SortDir = -1
	SortAsc  SortDir = 1
)

// PageParams — параметры постраничной выдачи (страницы нумеруются с 1).
type PageParams struct {
	Page     int64
	PageSize int64
	SortKey  SortKey
	SortDir  SortDir
}

// Skip возвращает смещение для текущей страницы.
func (p PageParams) Skip() int64 {
	if p.Page <= 1 {
		return 0
	}

	return (p.Page - 1) * p.PageSize
}
