package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/poem-comments/internal/config"
	apierrors "github.com/pribylovaa/poem-comments/internal/errors"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/service"
	"github.com/pribylovaa/poem-comments/internal/storage"
	"github.com/pribylovaa/poem-comments/mocks"
)

var target = models.Target{ID: "64d0c0ffee0000000000aaaa", Type: models.TargetGuwen}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type env struct {
	router  http.Handler
	storage *mocks.MockStorage
	content *mocks.MockChecker
	pingErr error
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)
	e := &env{
		storage: mocks.NewMockStorage(ctrl),
		content: mocks.NewMockChecker(ctrl),
	}

	cfg := config.Config{
		Limits: config.LimitsConfig{Default: 20, Max: 100, MaxDepth: 10, MaxContent: 1000, HydrateConcurrency: 2},
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := service.New(e.storage, e.content, cfg, m)

	e.router = NewRouter(svc, Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout:  time.Second,
		Metrics:  m,
		Gatherer: reg,
		Pinger:   pingerFunc(func(context.Context) error { return e.pingErr }),
	})

	return e
}

func (e *env) do(t *testing.T, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var out envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"requestId"`
}

func stored(parent *models.Comment) *models.Comment {
	c := &models.Comment{
		ID:         models.NewID(),
		TargetID:   target.ID,
		TargetType: target.Type,
		Content:    "床前明月光",
		Level:      1,
		Path:       []models.ID{},
		CreatedAt:  time.Date(2025, 8, 7, 12, 0, 0, 0, time.UTC),
	}
	if parent != nil {
		c.ParentID = parent.ID
		c.Level = parent.Level + 1
		c.Path = append(append([]models.ID{}, parent.Path...), parent.ID)
	}
	return c
}

func TestCreateComment_Root(t *testing.T) {
	e := newEnv(t)
	created := stored(nil)
	created.UserID = 42

	e.content.EXPECT().TargetExists(gomock.Any(), target).Return(true, nil)
	e.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Comment) (*models.Comment, error) {
			require.True(t, c.ParentID.IsZero())
			require.EqualValues(t, 42, c.UserID)
			require.Equal(t, "床前明月光", c.Content)
			return created, nil
		})

	rr, out := e.do(t, http.MethodPost, "/comments",
		`{"targetId":"64d0c0ffee0000000000aaaa","targetType":"guwen","content":"  床前明月光 ","parentId":null}`,
		map[string]string{"X-User-Id": "42"})

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, apierrors.CodeOK, out.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var got struct {
		ID       string  `json:"id"`
		ParentID *string `json:"parentId"`
		Level    int32   `json:"level"`
		Path     []string
	}
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.Equal(t, created.ID.String(), got.ID)
	require.Nil(t, got.ParentID)
	require.EqualValues(t, 1, got.Level)
}

func TestCreateComment_Errors(t *testing.T) {
	tcs := []struct {
		name       string
		body       string
		hdr        map[string]string
		setup      func(e *env)
		wantStatus int
		wantCode   int
	}{
		{
			name:       "unknown field",
			body:       `{"targetId":"t","targetType":"guwen","content":"x","extra":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidArgument,
		},
		{
			name:       "bad user header",
			body:       `{"targetId":"t","targetType":"guwen","content":"x"}`,
			hdr:        map[string]string{"X-User-Id": "abc"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidArgument,
		},
		{
			name:       "empty content",
			body:       `{"targetId":"t","targetType":"guwen","content":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeEmptyContent,
		},
		{
			name:       "malformed parent",
			body:       `{"targetId":"t","targetType":"guwen","content":"x","parentId":"not-an-id"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidReference,
		},
		{
			name:       "numeric parent",
			body:       `{"targetId":"64d0c0ffee0000000000aaaa","targetType":"guwen","content":"hi","parentId":123}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidReference,
		},
		{
			name:       "object parent",
			body:       `{"targetId":"t","targetType":"guwen","content":"x","parentId":{"$oid":"64d0c0ffee0000000000bbbb"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidReference,
		},
		{
			name:       "boolean parent",
			body:       `{"targetId":"t","targetType":"guwen","content":"x","parentId":false}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeInvalidReference,
		},
		{
			name: "target not found",
			body: `{"targetId":"t","targetType":"guwen","content":"x"}`,
			setup: func(e *env) {
				e.content.EXPECT().TargetExists(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeTargetNotFound,
		},
		{
			name: "parent not found",
			body: `{"targetId":"t","targetType":"guwen","content":"x","parentId":"64d0c0ffee0000000000bbbb"}`,
			setup: func(e *env) {
				e.content.EXPECT().TargetExists(gomock.Any(), gomock.Any()).Return(true, nil)
				e.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storage.ErrParentNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeParentNotFound,
		},
		{
			name: "too deep",
			body: `{"targetId":"t","targetType":"guwen","content":"x","parentId":"64d0c0ffee0000000000bbbb"}`,
			setup: func(e *env) {
				e.content.EXPECT().TargetExists(gomock.Any(), gomock.Any()).Return(true, nil)
				e.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storage.ErrMaxDepthExceeded)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeMaxDepthExceeded,
		},
		{
			name: "storage down",
			body: `{"targetId":"t","targetType":"guwen","content":"x"}`,
			setup: func(e *env) {
				e.content.EXPECT().TargetExists(gomock.Any(), gomock.Any()).Return(true, nil)
				e.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storage.ErrUnavailable)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apierrors.CodeStorageUnavailable,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			if tc.setup != nil {
				tc.setup(e)
			}

			rr, out := e.do(t, http.MethodPost, "/comments", tc.body, tc.hdr)
			require.Equal(t, tc.wantStatus, rr.Code)
			require.Equal(t, tc.wantCode, out.Code)
			require.Equal(t, "null", string(out.Data))
			require.Equal(t, rr.Header().Get("X-Request-Id"), out.RequestID)
		})
	}
}

// Сценарий A -> B -> C: одна запись верхнего уровня с вложенным поддеревом.
func TestListComments_Tree(t *testing.T) {
	e := newEnv(t)

	a := stored(nil)
	b := stored(a)
	c := stored(b)

	e.storage.EXPECT().FindTopLevel(gomock.Any(), target, models.PageParams{
		Page: 1, PageSize: 50, SortKey: models.SortByCreatedAt, SortDir: models.SortDesc,
	}).Return([]models.Comment{*a}, int64(1), nil)
	e.storage.EXPECT().FindDescendants(gomock.Any(), target, a.ID).Return([]models.Comment{*c, *b}, nil)

	rr, out := e.do(t, http.MethodGet, "/comments?targetId=64d0c0ffee0000000000aaaa&targetType=guwen&page=1&size=50", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	type node struct {
		ID       string `json:"id"`
		Children []node `json:"children"`
	}
	var page struct {
		List  []node `json:"list"`
		Total int64  `json:"total"`
		Page  int64  `json:"page"`
		Size  int64  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &page))

	require.EqualValues(t, 1, page.Total)
	require.EqualValues(t, 1, page.Page)
	require.EqualValues(t, 50, page.Size)
	require.Len(t, page.List, 1)
	require.Equal(t, a.ID.String(), page.List[0].ID)
	require.Len(t, page.List[0].Children, 1)
	require.Equal(t, b.ID.String(), page.List[0].Children[0].ID)
	require.Len(t, page.List[0].Children[0].Children, 1)
	require.Equal(t, c.ID.String(), page.List[0].Children[0].Children[0].ID)
	require.Empty(t, page.List[0].Children[0].Children[0].Children)
}

func TestListComments_EmptyIsArray(t *testing.T) {
	e := newEnv(t)
	e.storage.EXPECT().FindTopLevel(gomock.Any(), target, gomock.Any()).Return(nil, int64(0), nil)

	_, out := e.do(t, http.MethodGet, "/comments?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.Contains(t, string(out.Data), `"list":[]`)
}

func TestListComments_BadQuery(t *testing.T) {
	e := newEnv(t)

	for _, q := range []string{
		"targetId=x&targetType=guwen&page=abc",
		"targetId=x&targetType=guwen&size=-1",
		"targetId=x&targetType=guwen&sort=views",
		"targetId=x&targetType=guwen&order=sideways",
		"targetId=x&targetType=poem",
		"targetType=guwen",
	} {
		rr, out := e.do(t, http.MethodGet, "/comments?"+q, "", nil)
		require.Equal(t, http.StatusBadRequest, rr.Code, q)
		require.Equal(t, apierrors.CodeInvalidArgument, out.Code, q)
	}
}

func TestGetComment(t *testing.T) {
	e := newEnv(t)
	c := stored(nil)

	e.storage.EXPECT().CommentByID(gomock.Any(), c.ID).Return(c, nil)
	rr, _ := e.do(t, http.MethodGet, "/comments/"+c.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, out := e.do(t, http.MethodGet, "/comments/xyz", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, apierrors.CodeInvalidReference, out.Code)

	missing := models.NewID()
	e.storage.EXPECT().CommentByID(gomock.Any(), missing).Return(nil, storage.ErrNotFound)
	rr, _ = e.do(t, http.MethodGet, "/comments/"+missing.String(), "", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteComment(t *testing.T) {
	e := newEnv(t)
	id := models.NewID()
	author := map[string]string{"X-User-Id": "42"}

	e.storage.EXPECT().DeleteComment(gomock.Any(), id, int64(42), false).Return(int64(0), storage.ErrHasDescendants)
	rr, out := e.do(t, http.MethodDelete, "/comments/"+id.String(), "", author)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, apierrors.CodeHasDescendants, out.Code)

	e.storage.EXPECT().DeleteComment(gomock.Any(), id, int64(42), true).Return(int64(3), nil)
	rr, out = e.do(t, http.MethodDelete, "/comments/"+id.String()+"?cascade=true", "", author)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"deleted":3}`, string(out.Data))

	rr, _ = e.do(t, http.MethodDelete, "/comments/"+id.String()+"?cascade=maybe", "", author)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

// Удаление чужого или анонимного комментария — 403/3005.
func TestDeleteComment_Forbidden(t *testing.T) {
	e := newEnv(t)
	id := models.NewID()

	rr, out := e.do(t, http.MethodDelete, "/comments/"+id.String(), "", nil)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, apierrors.CodeForbidden, out.Code)

	e.storage.EXPECT().DeleteComment(gomock.Any(), id, int64(7), false).Return(int64(0), storage.ErrForbidden)
	rr, out = e.do(t, http.MethodDelete, "/comments/"+id.String(), "", map[string]string{"X-User-Id": "7"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, apierrors.CodeForbidden, out.Code)
}

func TestLatestComments(t *testing.T) {
	e := newEnv(t)
	c := stored(nil)

	e.storage.EXPECT().ListLatest(gomock.Any(), target, int64(10)).Return([]models.Comment{*c}, nil)
	rr, out := e.do(t, http.MethodGet, "/comments/latest?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.Comment
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.Len(t, got, 1)
	require.True(t, got[0].ID.Equal(c.ID))

	e.storage.EXPECT().ListLatest(gomock.Any(), target, int64(3)).Return(nil, nil)
	_, out = e.do(t, http.MethodGet, "/comments/latest?targetId=64d0c0ffee0000000000aaaa&targetType=guwen&limit=3", "", nil)
	require.Equal(t, "[]", string(out.Data))

	rr, out = e.do(t, http.MethodGet, "/comments/latest?targetId=64d0c0ffee0000000000aaaa&targetType=guwen&limit=x", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, apierrors.CodeInvalidArgument, out.Code)
}

// Истёкший серверный таймаут — 504, а не 499.
func TestServerTimeout_GatewayTimeout(t *testing.T) {
	e := newEnv(t)

	e.storage.EXPECT().CountByTarget(gomock.Any(), target).
		DoAndReturn(func(ctx context.Context, _ models.Target) (int64, error) {
			<-ctx.Done()
			return 0, fmt.Errorf("%w: %w", storage.ErrCancelled, ctx.Err())
		})

	rr, out := e.do(t, http.MethodGet, "/comments/count?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
	require.Equal(t, apierrors.CodeDeadlineExceeded, out.Code)
}

func TestCountHotAndLikes(t *testing.T) {
	e := newEnv(t)
	c := stored(nil)
	liked := *c
	liked.LikeCount = 1

	e.storage.EXPECT().CountByTarget(gomock.Any(), target).Return(int64(7), nil)
	_, out := e.do(t, http.MethodGet, "/comments/count?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.JSONEq(t, `{"total":7}`, string(out.Data))

	e.storage.EXPECT().ListHot(gomock.Any(), target, int64(10)).Return(nil, nil)
	_, out = e.do(t, http.MethodGet, "/comments/hot?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.Equal(t, "[]", string(out.Data))

	e.storage.EXPECT().AdjustLikes(gomock.Any(), c.ID, int32(1)).Return(&liked, nil)
	rr, out := e.do(t, http.MethodPost, "/comments/"+c.ID.String()+"/like", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, string(out.Data), `"likeCount":1`)

	e.storage.EXPECT().AdjustLikes(gomock.Any(), c.ID, int32(-1)).Return(c, nil)
	rr, _ = e.do(t, http.MethodDelete, "/comments/"+c.ID.String()+"/like", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestUserComments(t *testing.T) {
	e := newEnv(t)

	e.storage.EXPECT().ListByUser(gomock.Any(), int64(5), models.PageParams{Page: 2, PageSize: 10}).
		Return([]models.Comment{*stored(nil)}, int64(11), nil)

	rr, out := e.do(t, http.MethodGet, "/users/5/comments?page=2&size=10", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var page struct {
		List  []json.RawMessage `json:"list"`
		Total int64             `json:"total"`
		Page  int64             `json:"page"`
		Size  int64             `json:"size"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &page))
	require.Len(t, page.List, 1)
	require.EqualValues(t, 11, page.Total)
	require.EqualValues(t, 2, page.Page)
	require.EqualValues(t, 10, page.Size)

	rr, _ = e.do(t, http.MethodGet, "/users/abc/comments", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuditComments(t *testing.T) {
	e := newEnv(t)
	root := models.NewID()
	dangling := models.NewID()

	e.storage.EXPECT().ScanTarget(gomock.Any(), target).Return([]models.RawComment{
		{ID: root, TargetID: target.ID, TargetType: target.Type, ParentEncoding: models.ParentNull, Level: 1, Path: []models.ID{}, PathValid: true},
		{
			ID: models.NewID(), TargetID: target.ID, TargetType: target.Type,
			ParentRef: dangling, ParentEncoding: models.ParentObjectID,
			Level: 2, Path: []models.ID{dangling}, PathValid: true,
		},
	}, nil)
	e.storage.EXPECT().RawByIDs(gomock.Any(), []models.ID{dangling}).Return(nil, nil)

	rr, out := e.do(t, http.MethodGet, "/comments/audit?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Consistent bool               `json:"consistent"`
		Violations []models.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &got))
	require.False(t, got.Consistent)
	require.NotEmpty(t, got.Violations)
	require.Equal(t, models.ViolationDanglingParent, got.Violations[0].Kind)
}

func TestOpsEndpoints(t *testing.T) {
	e := newEnv(t)

	rr, _ := e.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	e.pingErr = errors.New("no primary")
	rr, _ = e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr, _ = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, bytes.Contains(rr.Body.Bytes(), []byte("comments_http_requests_total")))
}

func TestBasePath(t *testing.T) {
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	svc := service.New(ms, mocks.NewMockChecker(ctrl), config.Config{
		Limits: config.LimitsConfig{Default: 20, Max: 100, MaxDepth: 10, MaxContent: 1000, HydrateConcurrency: 1},
	}, metrics.New(prometheus.NewRegistry()))

	r := NewRouter(svc, Options{BasePath: "/api"})

	ms.EXPECT().CountByTarget(gomock.Any(), target).Return(int64(0), nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/comments/count?targetId=64d0c0ffee0000000000aaaa&targetType=guwen", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
