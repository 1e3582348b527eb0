package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidArticle = errors.New("invalid article")
)
