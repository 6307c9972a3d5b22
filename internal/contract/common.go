package contract

import "github.com/alexanderramin/parada/internal/app"

type SourceView = app.SourceView

type ErrorCode = app.ErrorCode

const (
	ErrNoData        ErrorCode = app.ErrNoData
	ErrInvalidFormat ErrorCode = app.ErrInvalidFormat
	ErrEmptyInput    ErrorCode = app.ErrEmptyInput
	ErrInvalidInput  ErrorCode = app.ErrInvalidInput
)

type Error = app.Error

var ParseFormat = app.ParseFormat
