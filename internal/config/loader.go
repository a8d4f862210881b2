package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the optional configuration file looked up next to the input.
const FileName = "profilematrix"

// Config holds run configuration
type Config struct {
	ItemLabel     string
	ValueLabel    string
	PresenceGlyph string
	Indent        string

	SheetName string

	TemplatePath      string
	TemplateOriginRow int
	TemplateOriginCol int

	OutputExtension string

	// Source is the config file that was read, empty when defaults were used.
	Source string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		ItemLabel:         "item name",
		ValueLabel:        "set value",
		PresenceGlyph:     "◯",
		Indent:            "  ",
		SheetName:         "ProfileMatrix",
		TemplateOriginRow: 6,
		TemplateOriginCol: 1,
		OutputExtension:   ".xlsx",
	}
}

// HasTemplate reports whether output should start from a template workbook.
func (c Config) HasTemplate() bool {
	return strings.TrimSpace(c.TemplatePath) != ""
}

// Load reads profilematrix.yaml from configPath (then the working
// directory). A missing file is not an error.
func Load(configPath string) (Config, error) {
	// Start with default
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	if strings.TrimSpace(configPath) != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Printf("[config] no %s.yaml found, using defaults", FileName)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	log.Printf("[config] loaded %s", cfg.Source)

	// Override defaults if values exist
	if v.IsSet("matrix.item_label") {
		cfg.ItemLabel = v.GetString("matrix.item_label")
	}
	if v.IsSet("matrix.value_label") {
		cfg.ValueLabel = v.GetString("matrix.value_label")
	}
	if v.IsSet("matrix.presence_glyph") {
		cfg.PresenceGlyph = v.GetString("matrix.presence_glyph")
	}
	if v.IsSet("matrix.indent") {
		cfg.Indent = v.GetString("matrix.indent")
	}
	if v.IsSet("sheet.name") {
		cfg.SheetName = v.GetString("sheet.name")
	}
	if v.IsSet("template.path") {
		cfg.TemplatePath = v.GetString("template.path")
	}
	if v.IsSet("template.origin_row") {
		cfg.TemplateOriginRow = v.GetInt("template.origin_row")
	}
	if v.IsSet("template.origin_col") {
		cfg.TemplateOriginCol = v.GetInt("template.origin_col")
	}
	if v.IsSet("output.extension") {
		cfg.OutputExtension = v.GetString("output.extension")
	}

	// Template paths are relative to the config file
	if cfg.HasTemplate() && !filepath.IsAbs(cfg.TemplatePath) {
		cfg.TemplatePath = filepath.Join(filepath.Dir(cfg.Source), cfg.TemplatePath)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise produce an unusable workbook.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ItemLabel) == "" || strings.TrimSpace(c.ValueLabel) == "" {
		return errors.New("matrix.item_label and matrix.value_label must not be empty")
	}
	if strings.TrimSpace(c.PresenceGlyph) == "" {
		return errors.New("matrix.presence_glyph must not be empty")
	}
	if strings.TrimSpace(c.SheetName) == "" {
		return errors.New("sheet.name must not be empty")
	}
	if len([]rune(c.SheetName)) > 31 {
		return fmt.Errorf("sheet.name %q exceeds 31 characters", c.SheetName)
	}
	if c.TemplateOriginRow <= 0 || c.TemplateOriginCol <= 0 {
		return fmt.Errorf("template origin (%d,%d) must be positive", c.TemplateOriginRow, c.TemplateOriginCol)
	}
	if !strings.HasPrefix(c.OutputExtension, ".") {
		return fmt.Errorf("output.extension %q must start with a dot", c.OutputExtension)
	}
	return nil
}
