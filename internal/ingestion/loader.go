package ingestion

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rpattn/profilematrix/internal/domain"
)

var (
	// ErrInvalidDocument is returned when the input is not a JSON array of objects.
	ErrInvalidDocument = errors.New("invalid profile document")
	// ErrMissingID is returned when a record has no string id.
	ErrMissingID = errors.New("record is missing id")
	// ErrMissingProfile is returned when a record has no profile object.
	ErrMissingProfile = errors.New("record is missing profile")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// LoadFile reads the profile document at path.
func LoadFile(path string) ([]domain.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = file.Close() }()

	records, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// Load decodes a JSON array of {id, profile} objects. Numbers are kept as
// json.Number so that integers and decimals survive without float rounding.
func Load(r io.Reader) ([]domain.Record, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var raw []json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: unexpected data after top-level array", ErrInvalidDocument)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after top-level array", ErrInvalidDocument)
	}

	records := make([]domain.Record, 0, len(raw))
	for idx, element := range raw {
		record, err := decodeRecord(element)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(element json.RawMessage) (domain.Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(element))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return domain.Record{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if fields == nil {
		return domain.Record{}, fmt.Errorf("%w: record is null", ErrInvalidDocument)
	}

	rawID, ok := fields["id"]
	if !ok || rawID == nil {
		return domain.Record{}, ErrMissingID
	}
	id, ok := rawID.(string)
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: id must be a string, got %T", ErrMissingID, rawID)
	}

	rawProfile, ok := fields["profile"]
	if !ok || rawProfile == nil {
		return domain.Record{}, fmt.Errorf("%w (id %q)", ErrMissingProfile, id)
	}
	profile, ok := rawProfile.(map[string]any)
	if !ok {
		return domain.Record{}, fmt.Errorf("%w: profile of %q must be an object, got %T", ErrInvalidDocument, id, rawProfile)
	}

	return domain.Record{ID: id, Profile: profile}, nil
}
