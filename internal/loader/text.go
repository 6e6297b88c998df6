package loader

import (
	"errors"
	"unicode/utf8"

	"ragdesk/internal/domain"
)

// TextLoader decodes a file as UTF-8 text and yields a single raw
// unit. FileType is recorded in the unit metadata so chunk statistics
// can distinguish, say, markdown from plain text.
type TextLoader struct {
	FileType string
}

func (l *TextLoader) Load(data []byte, name string) ([]domain.RawUnit, error) {
	if !utf8.Valid(data) {
		return nil, &domain.DecodeError{Name: name, Err: errors.New("invalid UTF-8")}
	}
	ft := l.FileType
	if ft == "" {
		ft = "text"
	}
	return []domain.RawUnit{{
		Text:     string(data),
		SourceID: name,
		Metadata: map[string]string{domain.MetaFileType: ft},
	}}, nil
}
