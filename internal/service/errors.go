package service

import (
	"errors"

	"github.com/camerontabion/JurisFlo/internal/extract"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrCompanyNotFound   = errors.New("company not found")
	ErrFieldNotFound     = errors.New("field not found")
	ErrFieldNotLocated   = errors.New("field pattern not found in document text")
	ErrReaderNil         = errors.New("reader is nil")
	ErrNameRequired      = errors.New("name is required")
	ErrMessageRequired   = errors.New("message is required")
	ErrInvalidStatus     = errors.New("operation not allowed in the current document status")
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat
)
