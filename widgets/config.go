package widgets

import (
	"encoding/json"
	"time"

	"offerpress/common"
)

// Widget type keys. Stable across versions; definitions upsert by them.
const (
	TypeTestimonial     = "testimonial"
	TypeCountdown       = "countdown"
	TypeComparisonTable = "comparison_table"
	TypeCTAButton       = "cta_button"
	TypeEmailCapture    = "email_capture"
)

// Config is a closed tagged union: exactly one variant is populated,
// selected by Type. The stored JSON is flat - the variant's fields sit next
// to "type" - so definition defaults overlay field-by-field under instance
// overrides.
type Config struct {
	Type            string
	Testimonial     *TestimonialConfig
	Countdown       *CountdownConfig
	ComparisonTable *ComparisonTableConfig
	CTAButton       *CTAButtonConfig
	EmailCapture    *EmailCaptureConfig
}

type TestimonialConfig struct {
	Author    string `json:"author"`
	Quote     string `json:"quote"` // markdown
	Rating    int    `json:"rating"`
	AvatarURL string `json:"avatar_url"`
}

type CountdownConfig struct {
	Headline    string `json:"headline"`
	Deadline    string `json:"deadline"` // RFC3339
	ExpiredText string `json:"expired_text"`
}

type ComparisonTableConfig struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type CTAButtonConfig struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style"`
}

type EmailCaptureConfig struct {
	Headline       string `json:"headline"`
	ButtonLabel    string `json:"button_label"`
	Placeholder    string `json:"placeholder"`
	SuccessMessage string `json:"success_message"`
}

// ParseConfig decodes a flat config object into its typed variant and
// validates it. Unknown or missing types fail validation; this is the write
// boundary that keeps "missing field at render time" bugs out of the system.
func ParseConfig(raw []byte) (*Config, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, common.NewValidationError("config", "not a JSON object")
	}

	cfg := &Config{Type: head.Type}
	switch head.Type {
	case TypeTestimonial:
		cfg.Testimonial = &TestimonialConfig{}
		if err := json.Unmarshal(raw, cfg.Testimonial); err != nil {
			return nil, common.NewValidationError("config", err.Error())
		}
	case TypeCountdown:
		cfg.Countdown = &CountdownConfig{}
		if err := json.Unmarshal(raw, cfg.Countdown); err != nil {
			return nil, common.NewValidationError("config", err.Error())
		}
	case TypeComparisonTable:
		cfg.ComparisonTable = &ComparisonTableConfig{}
		if err := json.Unmarshal(raw, cfg.ComparisonTable); err != nil {
			return nil, common.NewValidationError("config", err.Error())
		}
	case TypeCTAButton:
		cfg.CTAButton = &CTAButtonConfig{}
		if err := json.Unmarshal(raw, cfg.CTAButton); err != nil {
			return nil, common.NewValidationError("config", err.Error())
		}
	case TypeEmailCapture:
		cfg.EmailCapture = &EmailCaptureConfig{}
		if err := json.Unmarshal(raw, cfg.EmailCapture); err != nil {
			return nil, common.NewValidationError("config", err.Error())
		}
	case "":
		return nil, common.NewValidationError("type", "required")
	default:
		return nil, common.NewValidationError("type", "unknown widget type: "+head.Type)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the populated variant's required fields and bounds.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeTestimonial:
		t := c.Testimonial
		if t.Author == "" {
			return common.NewValidationError("author", "required")
		}
		if t.Quote == "" {
			return common.NewValidationError("quote", "required")
		}
		if t.Rating < 0 || t.Rating > 5 {
			return common.NewValidationError("rating", "must be between 0 and 5")
		}
	case TypeCountdown:
		cd := c.Countdown
		if cd.Deadline == "" {
			return common.NewValidationError("deadline", "required")
		}
		if _, err := time.Parse(time.RFC3339, cd.Deadline); err != nil {
			return common.NewValidationError("deadline", "must be RFC3339")
		}
	case TypeComparisonTable:
		ct := c.ComparisonTable
		if len(ct.Columns) == 0 {
			return common.NewValidationError("columns", "at least one column required")
		}
		for _, row := range ct.Rows {
			if len(row) != len(ct.Columns) {
				return common.NewValidationError("rows", "every row must match the column count")
			}
		}
	case TypeCTAButton:
		b := c.CTAButton
		if b.Label == "" {
			return common.NewValidationError("label", "required")
		}
		if b.URL == "" {
			return common.NewValidationError("url", "required")
		}
	case TypeEmailCapture:
		// all fields have rendered defaults
	default:
		return common.NewValidationError("type", "unknown widget type: "+c.Type)
	}
	return nil
}

// MergeConfig overlays instance config over definition defaults, key by
// key at the top level; instance values win. Both inputs are JSON objects;
// an empty string counts as an empty object.
func MergeConfig(defaults, overrides string) ([]byte, error) {
	merged := map[string]json.RawMessage{}

	if defaults != "" {
		if err := json.Unmarshal([]byte(defaults), &merged); err != nil {
			return nil, err
		}
	}

	if overrides != "" {
		var over map[string]json.RawMessage
		if err := json.Unmarshal([]byte(overrides), &over); err != nil {
			return nil, err
		}
		for k, v := range over {
			merged[k] = v
		}
	}

	return json.Marshal(merged)
}
