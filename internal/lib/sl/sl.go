// Package sl содержит атрибуты slog, которые повторяются во всех слоях сервиса.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil значение пустое.
//
//	log.Error("failed to save mare", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op атрибут с именем операции, которым помечаются логгеры обработчиков и воркеров.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

// UID атрибут с идентификатором пользователя.
func UID(uid string) slog.Attr {
	return slog.String("user_uid", uid)
}
