package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"ragdesk/internal/domain"
)

// CSVLoader yields one raw unit per data row so each record is
// retrievable on its own. When the file has a header row, values are
// rendered as "header: value" lines.
type CSVLoader struct{}

func (l *CSVLoader) Load(data []byte, name string) ([]domain.RawUnit, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.DecodeError{Name: name, Err: err}
	}

	var units []domain.RawUnit
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.DecodeError{Name: name, Err: err}
		}
		units = append(units, domain.RawUnit{
			Text:     renderRecord(header, record),
			SourceID: name,
			Metadata: map[string]string{domain.MetaFileType: "csv"},
		})
	}
	return units, nil
}

func renderRecord(header, record []string) string {
	var b strings.Builder
	for i, field := range record {
		if i > 0 {
			b.WriteString("\n")
		}
		if i < len(header) {
			b.WriteString(header[i])
			b.WriteString(": ")
		}
		b.WriteString(field)
	}
	return b.String()
}
