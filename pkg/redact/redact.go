// redact — утилиты безопасного вывода чувствительных данных в логи.
package redact

import (
	"net/url"
	"strings"
)

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }

// URL маскирует пароль в строке подключения (mongodb://, redis://...),
// сохраняя схему, пользователя, хосты и параметры.
//
//	"mongodb://app:s3cret@db:27017/poems" -> "mongodb://app:[REDACTED_PASSWORD]@db:27017/poems"
//	"redis://localhost:6379/0"            -> без изменений
//
// Непарсящаяся строка с '@' заменяется на "***" целиком.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if strings.Contains(raw, "@") {
			return "***"
		}
		return raw
	}

	if u.User == nil {
		return raw
	}

	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), Password())
	}

	s := u.String()
	// url.String экранирует квадратные скобки в userinfo.
	return strings.Replace(s, url.QueryEscape(Password()), Password(), 1)
}
