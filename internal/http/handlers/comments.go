package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/poem-comments/internal/errors"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/service"
)

// CreateCommentRequest — тело POST /comments.
// parentId: отсутствует, null или "" — корневой комментарий;
// тип поля проверяется отдельно (см. parentRef).
type CreateCommentRequest struct {
	TargetID   string          `json:"targetId"`
	TargetType string          `json:"targetType"`
	Content    string          `json:"content"`
	ParentID   json.RawMessage `json:"parentId,omitempty"`
}

// PageResponse — страница плоского или древовидного списка.
type PageResponse[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Size  int64 `json:"size"`
}

// DeleteResponse — результат удаления.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// CountResponse — число комментариев цели.
type CountResponse struct {
	Total int64 `json:"total"`
}

// AuditResponse — результат проверки согласованности иерархии.
type AuditResponse struct {
	Consistent bool               `json:"consistent"`
	Violations []models.Violation `json:"violations"`
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in CreateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("malformed body"))
		return
	}

	uid, err := userID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	parent, err := parentRef(in.ParentID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		Target:   models.Target{ID: in.TargetID, Type: models.TargetType(in.TargetType)},
		ParentID: parent,
		UserID:   uid,
		Content:  in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusCreated, c)
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt64(r, "page")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	size, err := queryInt64(r, "size")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	res, err := h.svc.ListTree(r.Context(), service.ListTreeInput{
		Target:   queryTarget(r),
		Page:     page,
		PageSize: size,
		SortKey:  q.Get("sort"),
		SortDir:  q.Get("order"),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items := res.Items
	if items == nil {
		items = []models.CommentNode{}
	}

	apierrors.WriteOK(w, r, http.StatusOK, PageResponse[models.CommentNode]{
		List:  items,
		Total: res.Total,
		Page:  res.Page,
		Size:  res.PageSize,
	})
}

func (h *Handlers) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.CommentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusOK, c)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	cascade, err := queryBool(r, "cascade")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	uid, err := userID(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	n, err := h.svc.DeleteComment(r.Context(), chi.URLParam(r, "id"), uid, cascade)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusOK, DeleteResponse{Deleted: n})
}

func (h *Handlers) CountComments(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountComments(r.Context(), queryTarget(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusOK, CountResponse{Total: n})
}

func (h *Handlers) HotComments(w http.ResponseWriter, r *http.Request) {
	h.flatList(w, r, h.svc.HotComments)
}

func (h *Handlers) LatestComments(w http.ResponseWriter, r *http.Request) {
	h.flatList(w, r, h.svc.LatestComments)
}

// flatList — общий обработчик плоских выборок по цели с ?limit.
func (h *Handlers) flatList(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error),
) {
	limit, err := queryInt64(r, "limit")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := list(r.Context(), queryTarget(r), limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if items == nil {
		items = []models.Comment{}
	}

	apierrors.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handlers) UserComments(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		apierrors.WriteError(w, r, invalidArgument("userId must be an integer"))
		return
	}

	page, err := queryInt64(r, "page")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	size, err := queryInt64(r, "size")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	res, err := h.svc.UserComments(r.Context(), uid, page, size)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items := res.Items
	if items == nil {
		items = []models.Comment{}
	}

	apierrors.WriteOK(w, r, http.StatusOK, PageResponse[models.Comment]{
		List:  items,
		Total: res.Total,
		Page:  res.Page,
		Size:  res.PageSize,
	})
}

func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.LikeComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusOK, c)
}

func (h *Handlers) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.UnlikeComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	apierrors.WriteOK(w, r, http.StatusOK, c)
}

func (h *Handlers) AuditComments(w http.ResponseWriter, r *http.Request) {
	violations, err := h.svc.Validate(r.Context(), queryTarget(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if violations == nil {
		violations = []models.Violation{}
	}

	apierrors.WriteOK(w, r, http.StatusOK, AuditResponse{
		Consistent: len(violations) == 0,
		Violations: violations,
	})
}
