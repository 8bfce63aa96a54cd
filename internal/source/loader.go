// Package source reads the Fedora CSV exports into core records.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
)

// ContextCheckInterval is how often (in rows) to check for cancellation.
var ContextCheckInterval = 1000

// CSVLoader loads entity inputs from a directory of CSV exports.
type CSVLoader struct {
	Dir    string
	Logger *slog.Logger
}

// NewCSVLoader creates a loader rooted at dir.
func NewCSVLoader(dir string) *CSVLoader {
	return &CSVLoader{Dir: dir, Logger: slog.Default()}
}

// Load reads one input file of an entity type.
func (l *CSVLoader) Load(ctx context.Context, def core.EntityDefinition, input string) ([]core.Record, error) {
	path := filepath.Join(l.Dir, input)

	f, err := os.Open(path)
	if err != nil {
		return nil, core.InputUnavailable(def.Type, input, err)
	}
	defer f.Close()

	counter := &countingReader{reader: f}
	records, err := ReadRecords(ctx, def, input, counter)
	if err != nil {
		return nil, err
	}

	if l.Logger != nil {
		l.Logger.Debug("csv read",
			"entity", def.Type,
			"file", input,
			"bytes", counter.BytesRead,
			"records", len(records),
		)
	}
	return records, nil
}

// ReadRecords decodes CSV from r against def's field specs. source names the
// input in errors. The first invalid row aborts the read.
func ReadRecords(ctx context.Context, def core.EntityDefinition, source string, r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(NewBOMReader(r))

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.MalformedRow(def.Type, source, 1, "", fmt.Errorf("missing header row"))
		}
		return nil, readError(def, source, err)
	}

	headerIdx, err := core.ValidateHeaders(header, def.FieldSpecs)
	if err != nil {
		return nil, core.MalformedRow(def.Type, source, 1, "", err)
	}
	validator := core.NewRowValidator(def.FieldSpecs, headerIdx)

	var records []core.Record
	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", source, err)
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(def, source, err)
		}
		line, _ := cr.FieldPos(0)

		values, err := validator.Decode(row)
		if err != nil {
			var verr core.ValidationError
			field := ""
			if errors.As(err, &verr) {
				field = verr.Field
			}
			return nil, core.MalformedRow(def.Type, source, line, field, err)
		}

		records = append(records, core.NewRecord(source, line, values))
	}

	return records, nil
}

// readError classifies csv errors: parse errors point at a row, anything else
// means the file itself could not be read.
func readError(def core.EntityDefinition, source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return core.MalformedRow(def.Type, source, pe.StartLine, "", pe.Err)
	}
	return core.InputUnavailable(def.Type, source, err)
}
