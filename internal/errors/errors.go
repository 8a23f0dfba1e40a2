// errors стандартизирует ответы HTTP-слоя сервиса комментариев.
// На вход принимает ошибку сервисного слоя (сентинелы service.Err*),
// на выход даёт:
//   - корректный HTTP-статус;
//   - стабильный числовой код и краткое безопасное message без утечки деталей.
//
// Успешные ответы используют тот же конверт {code, message, data} с code=200.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/pribylovaa/poem-comments/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Доменные коды ответа. Совпадают с кодами, которые ждёт фронт платформы.
const (
	CodeOK                 = 200
	CodeParentNotFound     = 3001
	CodeEmptyContent       = 3002
	CodeContentTooLong     = 3003
	CodeMaxDepthExceeded   = 3004
	CodeForbidden          = 3005
	CodeHasDescendants     = 3006
	CodeTargetNotFound     = 5002
	CodeStorageUnavailable = 6001
	CodeInvalidArgument    = 9001
	CodeInvalidReference   = 9003
	CodeConflict           = 409
	CodeCancelled          = 499
	CodeDeadlineExceeded   = 504
	CodeInternal           = 500
)

// timestampLayout — формат поля timestamp в конверте.
const timestampLayout = "2006-01-02 15:04:05"

// Envelope — единый конверт ответа.
// Data — полезная нагрузка (null для ошибок).
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// mapping — строка таблицы соответствия сентинела ответу.
type mapping struct {
	err    error
	status int
	code   int
	msg    string
}

// table — порядок важен: более специфичные ошибки выше.
var table = []mapping{
	{service.ErrInvalidReference, http.StatusBadRequest, CodeInvalidReference, "invalid reference"},
	{service.ErrTargetNotFound, http.StatusNotFound, CodeTargetNotFound, "target not found"},
	{service.ErrParentNotFound, http.StatusNotFound, CodeParentNotFound, "parent comment not found"},
	{service.ErrNotFound, http.StatusNotFound, CodeParentNotFound, "comment not found"},
	{service.ErrEmptyContent, http.StatusBadRequest, CodeEmptyContent, "content is empty"},
	{service.ErrContentTooLong, http.StatusBadRequest, CodeContentTooLong, "content is too long"},
	{service.ErrMaxDepthExceeded, http.StatusUnprocessableEntity, CodeMaxDepthExceeded, "max reply depth exceeded"},
	{service.ErrForbidden, http.StatusForbidden, CodeForbidden, "no permission for this comment"},
	{service.ErrHasDescendants, http.StatusConflict, CodeHasDescendants, "comment has replies"},
	{service.ErrConflict, http.StatusConflict, CodeConflict, "conflict"},
	{service.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidArgument, "invalid argument"},
	{service.ErrDeadlineExceeded, http.StatusGatewayTimeout, CodeDeadlineExceeded, "request timed out"},
	{service.ErrCancelled, StatusClientClosedRequest, CodeCancelled, "request cancelled"},
	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, CodeStorageUnavailable, "storage unavailable"},
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и конверт ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы не маскировать баг;
//   - err не из таблицы (в т.ч. service.ErrInternal) — 500/internal без деталей.
func ToHTTP(err error) (int, Envelope) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.err) {
				return m.status, Envelope{Code: m.code, Message: m.msg}
			}
		}
	}

	return http.StatusInternalServerError, Envelope{Code: CodeInternal, Message: "internal error"}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус и тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	write(w, r, status, resp)
}

// WriteOK пишет успешный ответ с полезной нагрузкой data.
func WriteOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, Envelope{Code: CodeOK, Message: "success", Data: data})
}

func write(w http.ResponseWriter, r *http.Request, status int, resp Envelope) {
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}
	resp.Timestamp = time.Now().Format(timestampLayout)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
