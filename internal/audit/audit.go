// Package audit проверяет инварианты иерархии комментариев на сохранённых данных.
// Ничего не исправляет: только сообщает о нарушениях. Повторный запуск на тех же
// данных даёт тот же упорядоченный список.
package audit

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pribylovaa/poem-comments/internal/hierarchy"
	"github.com/pribylovaa/poem-comments/internal/models"
)

// Validate проверяет записи одной цели.
//
// records — все комментарии цели в «сыром» виде;
// external — родители, на которые ссылаются записи, но которые лежат вне цели
// (нужны, чтобы отличить висячую ссылку от ссылки на чужую цель).
//
// Обнаруживает:
//   - dangling_parent: родитель не существует;
//   - cross_target_parent: родитель существует, но на другой цели;
//   - invalid_parent_type: ссылка хранится не как ObjectID (строка, число...);
//   - level_mismatch / path_mismatch: сохранённые level/path расходятся с ComputeLevelAndPath(parent);
//   - mixed_no_parent_encoding: «нет родителя» записан не только каноническим null.
func Validate(target models.Target, records []models.RawComment, external []models.RawComment) []models.Violation {
	byID := make(map[models.ID]models.RawComment, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	outside := make(map[models.ID]models.RawComment, len(external))
	for _, r := range external {
		outside[r.ID] = r
	}

	var out []models.Violation

	if v, ok := mixedEncodings(records); ok {
		out = append(out, v)
	}

	for _, r := range records {
		out = append(out, checkRecord(target, r, byID, outside)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].CommentID.Compare(out[j].CommentID); c != 0 {
			return c < 0
		}

		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}

		return out[i].Detail < out[j].Detail
	})

	return out
}

func checkRecord(target models.Target, r models.RawComment, byID, outside map[models.ID]models.RawComment) []models.Violation {
	var out []models.Violation

	switch r.ParentEncoding {
	case models.ParentHexString, models.ParentOther:
		out = append(out, models.Violation{
			Kind:      models.ViolationInvalidParentType,
			CommentID: r.ID,
			Detail:    fmt.Sprintf("parentId stored as %s (%q), want object id", r.ParentEncoding, r.RawParent),
		})
	}

	var parent *models.Comment
	if !r.ParentEncoding.IsNoParent() {
		if r.ParentRef.IsZero() {
			// Ссылку не удалось разобрать вовсе — сверять level/path не с чем.
			return out
		}

		p, ok := byID[r.ParentRef]
		if !ok {
			if ext, found := outside[r.ParentRef]; found {
				out = append(out, models.Violation{
					Kind:      models.ViolationCrossTargetParent,
					CommentID: r.ID,
					Detail: fmt.Sprintf("parent %s belongs to %s/%s, comment to %s/%s",
						r.ParentRef, ext.TargetType, ext.TargetID, target.Type, target.ID),
				})
				return out
			}

			out = append(out, models.Violation{
				Kind:      models.ViolationDanglingParent,
				CommentID: r.ID,
				Detail:    fmt.Sprintf("parent %s does not exist", r.ParentRef),
			})
			return out
		}

		parent = &models.Comment{ID: p.ID, Level: p.Level, Path: p.Path}
	}

	wantLevel, wantPath := hierarchy.ComputeLevelAndPath(parent)

	if r.Level != wantLevel {
		out = append(out, models.Violation{
			Kind:      models.ViolationLevelMismatch,
			CommentID: r.ID,
			Detail:    fmt.Sprintf("level=%d, want %d", r.Level, wantLevel),
		})
	}

	if !r.PathValid {
		out = append(out, models.Violation{
			Kind:      models.ViolationPathMismatch,
			CommentID: r.ID,
			Detail:    "path is missing or is not a list of object ids",
		})
	} else if !slices.EqualFunc(r.Path, wantPath, models.ID.Equal) {
		out = append(out, models.Violation{
			Kind:      models.ViolationPathMismatch,
			CommentID: r.ID,
			Detail:    fmt.Sprintf("path=%s, want %s", formatPath(r.Path), formatPath(wantPath)),
		})
	}

	return out
}

// mixedEncodings — нарушение уровня коллекции: «нет родителя» записан не только как null.
func mixedEncodings(records []models.RawComment) (models.Violation, bool) {
	counts := make(map[models.ParentEncoding]int)
	for _, r := range records {
		if r.ParentEncoding.IsNoParent() {
			counts[r.ParentEncoding]++
		}
	}

	// Одна каноническая форма (null) — норма. Любая другая, даже единственная,
	// ломает равенство «корни == level 1»: запрос корней ищет только null.
	if len(counts) == 0 || (len(counts) == 1 && counts[models.ParentNull] > 0) {
		return models.Violation{}, false
	}

	parts := make([]string, 0, len(counts))
	for enc, n := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", enc, n))
	}
	sort.Strings(parts)

	return models.Violation{
		Kind:   models.ViolationMixedNoParent,
		Detail: "no-parent encodings: " + strings.Join(parts, ", "),
	}, true
}

func formatPath(p []models.ID) string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = id.String()
	}

	return "[" + strings.Join(parts, ",") + "]"
}
