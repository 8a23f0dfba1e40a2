package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/service"
)

// HeaderUserID — id автора, который проставляет доверенный шлюз после аутентификации.
const HeaderUserID = "X-User-Id"

// Pinger — проверка готовности зависимостей для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers агрегирует зависимости REST-обработчиков.
type Handlers struct {
	svc    *service.Service
	pinger Pinger
}

// New создаёт обработчики. pinger может быть nil — тогда /healthz всегда 200.
func New(svc *service.Service, pinger Pinger) *Handlers {
	return &Handlers{svc: svc, pinger: pinger}
}

// writeJSON — ответ JSON без конверта (для ops-эндпоинтов).
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// invalidArgument — локальная ошибка парсинга запроса.
func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// parentRef достаёт сырую ссылку на родителя из тела запроса.
// Отсутствует или null -> "" (корень); строка уходит в сервис как есть;
// любой другой JSON-тип -> ErrInvalidReference.
func parentRef(raw json.RawMessage) (string, error) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("%w: parentId must be a string", models.ErrInvalidReference)
	}

	return s, nil
}

// queryInt64 читает необязательный целочисленный параметр; пусто -> 0.
func queryInt64(r *http.Request, name string) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, invalidArgument("%s must be an integer", name)
	}

	return n, nil
}

// queryBool читает необязательный булев параметр; пусто -> false.
func queryBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalidArgument("%s must be a boolean", name)
	}

	return b, nil
}

// queryTarget читает пару targetId/targetType; валидирует сервис.
func queryTarget(r *http.Request) models.Target {
	q := r.URL.Query()
	return models.Target{ID: q.Get("targetId"), Type: models.TargetType(q.Get("targetType"))}
}

// userID читает X-User-Id; отсутствие заголовка — анонимный автор (0).
func userID(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, invalidArgument("bad %s header", HeaderUserID)
	}

	return n, nil
}
