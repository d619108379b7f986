package composer

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// FieldNames maps query roles to the literal parameter names a client uses,
// plus the list delimiters and defaults. Build it once with NewFieldNames
// and treat it as read-only afterwards.
type FieldNames struct {
	SortBy          string `yaml:"sort_by" mapstructure:"sort_by"`
	SortDirection   string `yaml:"sort_direction" mapstructure:"sort_direction"`
	PageFrom        string `yaml:"page_from" mapstructure:"page_from"`
	PageSize        string `yaml:"page_size" mapstructure:"page_size"`
	Details         string `yaml:"details" mapstructure:"details"`
	Props           string `yaml:"props" mapstructure:"props"`
	Filter          string `yaml:"filter" mapstructure:"filter"`
	FilterExcludeID string `yaml:"filter_exclude_id" mapstructure:"filter_exclude_id"`

	// Bypass names the key under which a caller may pass a prebuilt
	// *core.Descriptor that skips compilation.
	Bypass string `yaml:"bypass" mapstructure:"bypass"`

	SortByDelimiter      string `yaml:"sort_by_delimiter" mapstructure:"sort_by_delimiter"`
	AttributesDelimiter  string `yaml:"attributes_delimiter" mapstructure:"attributes_delimiter"`
	AssociationDelimiter string `yaml:"association_delimiter" mapstructure:"association_delimiter"`

	DefaultSortDirection string `yaml:"default_sort_direction" mapstructure:"default_sort_direction"`
	DefaultPageSize      int    `yaml:"default_page_size" mapstructure:"default_page_size"`
}

// DefaultFieldNames returns the stock parameter names.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		SortBy:        "sort_by",
		SortDirection: "sort_direction",

		PageFrom: "page_from",
		PageSize: "page_size",

		Details:         "details",
		Props:           "props",
		Filter:          "filter",
		FilterExcludeID: "filter_exclude_id",
		Bypass:          "$query",

		SortByDelimiter:      ",",
		AttributesDelimiter:  ",",
		AssociationDelimiter: ",",

		DefaultSortDirection: "DESC",
		DefaultPageSize:      50,
	}
}

// NewFieldNames returns overrides with every unset field taken from
// DefaultFieldNames.
func NewFieldNames(overrides FieldNames) (FieldNames, error) {
	names := overrides
	if err := mergo.Merge(&names, DefaultFieldNames()); err != nil {
		return FieldNames{}, fmt.Errorf("merge field names: %w", err)
	}
	if err := names.Validate(); err != nil {
		return FieldNames{}, err
	}
	return names, nil
}

// Validate checks that every role and delimiter is set and the default page
// size is positive.
func (n FieldNames) Validate() error {
	var errs []error
	required := map[string]string{
		"sort_by":                n.SortBy,
		"sort_direction":         n.SortDirection,
		"page_from":              n.PageFrom,
		"page_size":              n.PageSize,
		"details":                n.Details,
		"props":                  n.Props,
		"filter":                 n.Filter,
		"filter_exclude_id":      n.FilterExcludeID,
		"bypass":                 n.Bypass,
		"sort_by_delimiter":      n.SortByDelimiter,
		"attributes_delimiter":   n.AttributesDelimiter,
		"association_delimiter":  n.AssociationDelimiter,
		"default_sort_direction": n.DefaultSortDirection,
	}
	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("field name %q must not be empty", key))
		}
	}
	if n.DefaultPageSize <= 0 {
		errs = append(errs, fmt.Errorf("default_page_size must be positive, got %d", n.DefaultPageSize))
	}
	return errors.Join(errs...)
}

// Reserved returns the parameter names that never reach the where clause.
func (n FieldNames) Reserved() []string {
	return []string{
		n.SortBy,
		n.SortDirection,
		n.PageFrom,
		n.PageSize,
		n.Details,
		n.Props,
		n.Filter,
		n.FilterExcludeID,
		n.Bypass,
	}
}
