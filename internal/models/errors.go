package models

import "errors"

var (
	// ErrInvalidArgument некорректные входные данные (например, нулевая дата).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPaymentRequired доступ закрыт: статус пользователя DEFEATED.
	ErrPaymentRequired = errors.New("payment required")
	// ErrNotFound запрошенная запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists запись с таким ключом уже существует.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEvent событие провайдера уже было применено.
	ErrDuplicateEvent = errors.New("duplicate event")
)
