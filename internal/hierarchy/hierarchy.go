// Package hierarchy — чистые вычисления над деревом комментариев: уровень и путь
// при создании, сборка вложенного дерева из плоской выборки при чтении. Без I/O.
package hierarchy

import (
	"slices"

	"github.com/pribylovaa/poem-comments/internal/models"
)

// ComputeLevelAndPath возвращает level/path для нового комментария.
//   - parent == nil: level=1, path=[];
//   - иначе: level=parent.Level+1, path=parent.Path+[parent.ID].
//
// Возвращаемый path — всегда новый непустой (не nil) срез, не разделяющий память с parent.Path.
func ComputeLevelAndPath(parent *models.Comment) (int32, []models.ID) {
	if parent == nil {
		return 1, []models.ID{}
	}

	path := make([]models.ID, 0, len(parent.Path)+1)
	path = append(path, parent.Path...)
	path = append(path, parent.ID)

	return parent.Level + 1, path
}

// Orphan — потомок, чей заявленный родитель отсутствует в переданной выборке.
// Политика: такие комментарии в дерево не попадают, а возвращаются вызывающему
// для логирования (Warn) и учёта в метриках.
type Orphan struct {
	Comment       models.Comment
	MissingParent models.ID
}

// BuildTree собирает вложенное дерево.
//
// topLevel — корни в нужном порядке (порядок сохраняется как есть);
// descendants — все потомки этих корней в любом порядке.
// Дети группируются по ParentID (прямой родитель), а не по вхождению в path;
// на каждом уровне сортируются по createdAt ASC, затем по id ASC.
// Результат детерминирован: одинаковый набор на входе даёт одинаковое дерево
// независимо от порядка элементов в descendants. Дубликаты по id схлопываются.
func BuildTree(topLevel []models.Comment, descendants []models.Comment) ([]models.CommentNode, []Orphan) {
	known := make(map[models.ID]struct{}, len(topLevel)+len(descendants))
	roots := make([]models.Comment, 0, len(topLevel))
	for _, c := range topLevel {
		if _, dup := known[c.ID]; dup {
			continue
		}
		known[c.ID] = struct{}{}
		roots = append(roots, c)
	}

	children := make(map[models.ID][]models.Comment)
	pending := make([]models.Comment, 0, len(descendants))
	for _, c := range descendants {
		if _, dup := known[c.ID]; dup {
			continue
		}
		known[c.ID] = struct{}{}
		pending = append(pending, c)

		if !c.ParentID.IsZero() {
			children[c.ParentID] = append(children[c.ParentID], c)
		}
	}

	for id := range children {
		slices.SortFunc(children[id], CompareChronological)
	}

	placed := make(map[models.ID]struct{}, len(known))

	var build func(c models.Comment) models.CommentNode
	build = func(c models.Comment) models.CommentNode {
		placed[c.ID] = struct{}{}

		kids := children[c.ID]
		node := models.CommentNode{Comment: c, Children: make([]models.CommentNode, 0, len(kids))}
		for _, kid := range kids {
			// Защита от циклов в повреждённых данных.
			if _, seen := placed[kid.ID]; seen {
				continue
			}
			node.Children = append(node.Children, build(kid))
		}

		return node
	}

	out := make([]models.CommentNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}

	var orphans []Orphan
	for _, c := range pending {
		if _, ok := placed[c.ID]; ok {
			continue
		}
		orphans = append(orphans, Orphan{Comment: c, MissingParent: c.ParentID})
	}

	slices.SortFunc(orphans, func(a, b Orphan) int {
		return a.Comment.ID.Compare(b.Comment.ID)
	})

	return out, orphans
}

// CompareChronological — порядок ответов внутри уровня: createdAt ASC, id ASC.
func CompareChronological(a, b models.Comment) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}

	return a.ID.Compare(b.ID)
}

// Comparator возвращает функцию сравнения для ключа/направления корней.
// Тай-брейк по id идёт в том же направлении, что и основной ключ,
// чтобы совпадать с сортировкой в хранилище ({key: dir, _id: dir}).
func Comparator(key models.SortKey, dir models.SortDir) func(a, b models.Comment) int {
	if dir == 0 {
		dir = models.SortDesc
	}

	return func(a, b models.Comment) int {
		var c int
		switch key {
		case models.SortByLikeCount:
			c = cmpInt32(a.LikeCount, b.LikeCount)
		case models.SortByReplyCount:
			c = cmpInt32(a.ReplyCount, b.ReplyCount)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}

		if c == 0 {
			c = a.ID.Compare(b.ID)
		}

		return c * int(dir)
	}
}

// SortComments сортирует срез на месте.
func SortComments(items []models.Comment, key models.SortKey, dir models.SortDir) {
	slices.SortFunc(items, Comparator(key, dir))
}

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
