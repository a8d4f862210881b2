package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/profilematrix/internal/config"
	"github.com/rpattn/profilematrix/internal/domain"
	"github.com/rpattn/profilematrix/internal/ingestion"
	"github.com/rpattn/profilematrix/internal/matrix"
)

// LoadFunc reads the input document into records.
type LoadFunc func(path string) ([]domain.Record, error)

// Service runs the profile-to-matrix transform end to end.
type Service struct {
	cfg   config.Config
	load  LoadFunc
	now   func() time.Time
	newID func() uuid.UUID
}

type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithLoader replaces the JSON file loader.
func WithLoader(load LoadFunc) Option {
	return func(s *Service) {
		if load != nil {
			s.load = load
		}
	}
}

func NewService(opts ...Option) *Service {
	service := &Service{
		cfg:   config.DefaultConfig(),
		load:  ingestion.LoadFile,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(service)
	}
	if strings.TrimSpace(service.cfg.OutputExtension) == "" {
		service.cfg.OutputExtension = ".xlsx"
	}
	return service
}

// Result describes a completed run.
type Result struct {
	RunID        uuid.UUID
	InputPath    string
	OutputPath   string
	SheetName    string
	Templated    bool
	Records      int
	Descriptors  int
	Dropped      int
	Stats        matrix.Stats
	BytesWritten int64
	Duration     time.Duration
}

// DeriveOutputPath replaces the input's extension with ext.
func DeriveOutputPath(inputPath, ext string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + ext
}

// Layout maps configuration onto the writer layout. Templates are drawn
// at the configured template origin; fresh sheets start at A1.
func Layout(cfg config.Config, templated bool) matrix.Layout {
	layout := matrix.Layout{
		OriginRow:     1,
		OriginCol:     1,
		ItemLabel:     cfg.ItemLabel,
		ValueLabel:    cfg.ValueLabel,
		PresenceGlyph: cfg.PresenceGlyph,
		Indent:        cfg.Indent,
	}
	if templated {
		layout.OriginRow = cfg.TemplateOriginRow
		layout.OriginCol = cfg.TemplateOriginCol
	}
	return layout
}

// Run loads inputPath, builds the matrix and saves it next to the input.
func (s *Service) Run(ctx context.Context, inputPath string) (Result, error) {
	if strings.TrimSpace(inputPath) == "" {
		return Result{}, errors.New("input path is required")
	}
	start := s.now()
	result := Result{
		RunID:      s.newID(),
		InputPath:  inputPath,
		OutputPath: DeriveOutputPath(inputPath, s.cfg.OutputExtension),
	}
	if result.OutputPath == inputPath {
		return result, fmt.Errorf("output path %s would overwrite the input", result.OutputPath)
	}

	records, err := s.load(inputPath)
	if err != nil {
		return result, err
	}
	result.Records = len(records)
	log.Printf("[export] run %s loaded %d records from %s", result.RunID, len(records), inputPath)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	collection, err := matrix.Collect(records)
	if err != nil {
		return result, fmt.Errorf("collect key paths: %w", err)
	}
	result.Descriptors = len(collection.Descriptors)
	result.Dropped = collection.DroppedValues
	if collection.DroppedValues > 0 {
		log.Printf("[export] run %s dropped %d scalar values at paths that are objects in other records", result.RunID, collection.DroppedValues)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	workbook, err := s.openWorkbook()
	if err != nil {
		return result, err
	}
	defer func() { _ = workbook.Close() }()
	result.SheetName = workbook.SheetName()
	result.Templated = workbook.Templated()

	writer := matrix.NewWriter(Layout(s.cfg, workbook.Templated()))
	stats, err := writer.Write(workbook, records, collection)
	if err != nil {
		return result, fmt.Errorf("write matrix: %w", err)
	}
	result.Stats = stats

	layout := writer.Layout()
	if err := workbook.Decorate(layout.OriginRow, layout.OriginCol, layout.OriginCol+stats.HeaderColumns-1); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	written, err := workbook.SaveAtomic(result.OutputPath)
	if err != nil {
		return result, fmt.Errorf("save %s: %w", result.OutputPath, err)
	}
	result.BytesWritten = written
	result.Duration = s.now().Sub(start)
	log.Printf("[export] run %s completed (rows=%d columns=%d path=%s)", result.RunID, stats.BodyRows, stats.HeaderColumns, result.OutputPath)
	return result, nil
}

func (s *Service) openWorkbook() (*Workbook, error) {
	if s.cfg.HasTemplate() {
		return OpenTemplate(s.cfg.TemplatePath)
	}
	return NewWorkbook(s.cfg.SheetName)
}
