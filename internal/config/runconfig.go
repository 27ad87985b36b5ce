// Package config handles AutoVault configuration: the per-vault run
// configuration JSON, the template store JSON, the global TOML config with
// named vaults, and machine-local state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kstrand/autovault/internal/atomicfile"
	"github.com/kstrand/autovault/internal/paths"
)

const (
	// RunConfigName is the canonical run-config file name.
	RunConfigName = "cust-run-config.json"

	// RunConfigRelPath is the run-config location relative to a vault directory.
	RunConfigRelPath = "config/" + RunConfigName
)

// ErrRunConfigNotFound indicates the run-config file does not exist.
var ErrRunConfigNotFound = errors.New("run config not found")

// CustomerEntry is one element of the CustomerIds array.
//
// Invalid entries (non-integer or negative JSON values) are retained so
// structure generation can report them per-item instead of rejecting the
// whole config.
type CustomerEntry struct {
	Raw   string // original JSON token, used in error messages
	ID    int    // parsed value, only meaningful when Valid
	Valid bool
}

// RunConfig is the typed view of cust-run-config.json.
type RunConfig struct {
	VaultRoot            string
	CustomerIDWidth      int
	Customers            []CustomerEntry
	Sections             []string
	TemplateRelativeRoot string
	EnableCleanup        bool

	// Path is where the config was loaded from. Empty for in-memory configs.
	Path string
}

// rawRunConfig mirrors the JSON document with pointer fields so missing and
// wrong-typed keys can be told apart from zero values.
type rawRunConfig struct {
	VaultRoot            *string           `json:"VaultRoot"`
	CustomerIDWidth      *int              `json:"CustomerIdWidth"`
	CustomerIDs          []json.RawMessage `json:"CustomerIds"`
	Sections             *[]string         `json:"Sections"`
	TemplateRelativeRoot *string           `json:"TemplateRelativeRoot"`
	EnableCleanup        *bool             `json:"EnableCleanup"`
}

// persistedRunConfig is the serialization shape for writing the config back.
type persistedRunConfig struct {
	VaultRoot            string            `json:"VaultRoot"`
	CustomerIDWidth      int               `json:"CustomerIdWidth"`
	CustomerIDs          []json.RawMessage `json:"CustomerIds"`
	Sections             []string          `json:"Sections"`
	TemplateRelativeRoot string            `json:"TemplateRelativeRoot"`
	EnableCleanup        bool              `json:"EnableCleanup,omitempty"`
}

// LoadRunConfig reads and validates the run configuration at path.
//
// It fails closed: a missing file, malformed JSON, or a missing/wrong-typed
// required field is an error and no partial config is returned. Individual
// malformed CustomerIds entries are not fatal; they are kept as invalid
// entries for per-item reporting.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunConfigNotFound, path)
		}
		return nil, fmt.Errorf("read run config %s: %w", path, err)
	}

	var raw rawRunConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, fmt.Errorf("run config %s: field %s has wrong type (got %s)", path, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("parse run config %s: %w", path, err)
	}

	cfg := &RunConfig{Path: path}

	if raw.VaultRoot == nil {
		return nil, missingField(path, "VaultRoot")
	}
	cfg.VaultRoot = *raw.VaultRoot

	if raw.CustomerIDWidth == nil {
		return nil, missingField(path, "CustomerIdWidth")
	}
	cfg.CustomerIDWidth = *raw.CustomerIDWidth

	if raw.CustomerIDs == nil {
		return nil, missingField(path, "CustomerIds")
	}
	cfg.Customers = parseCustomerEntries(raw.CustomerIDs)

	if raw.Sections == nil {
		return nil, missingField(path, "Sections")
	}
	cfg.Sections = *raw.Sections

	if raw.TemplateRelativeRoot == nil {
		return nil, missingField(path, "TemplateRelativeRoot")
	}
	cfg.TemplateRelativeRoot = *raw.TemplateRelativeRoot

	if raw.EnableCleanup != nil {
		cfg.EnableCleanup = *raw.EnableCleanup
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("run config %s: %w", path, err)
	}

	return cfg, nil
}

func missingField(path, field string) error {
	return fmt.Errorf("run config %s: missing required field %s", path, field)
}

// parseCustomerEntries converts raw JSON array elements into CustomerEntry
// values, keeping malformed elements as invalid entries.
func parseCustomerEntries(elems []json.RawMessage) []CustomerEntry {
	entries := make([]CustomerEntry, 0, len(elems))
	for _, el := range elems {
		raw := strings.TrimSpace(string(el))
		var id int
		if err := json.Unmarshal(el, &id); err != nil || id < 0 {
			entries = append(entries, CustomerEntry{Raw: raw})
			continue
		}
		entries = append(entries, CustomerEntry{Raw: raw, ID: id, Valid: true})
	}
	return entries
}

// Validate checks structural invariants of the run config.
//
// Per-item CustomerIds problems are not errors here; only duplicates
// among the valid IDs make the config unusable as a whole.
func (c *RunConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.VaultRoot, validation.Required),
		validation.Field(&c.CustomerIDWidth, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.Sections, validation.Required, validation.Each(validation.Required), validation.By(uniqueSections)),
		validation.Field(&c.TemplateRelativeRoot, validation.Required),
		validation.Field(&c.Customers, validation.By(uniqueValidIDs)),
	)
}

func uniqueSections(value interface{}) error {
	sections, _ := value.([]string)
	seen := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate section %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func uniqueValidIDs(value interface{}) error {
	entries, _ := value.([]CustomerEntry)
	seen := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if !e.Valid {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate customer ID %d", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// WidthWarnings returns one message per valid customer ID whose decimal
// representation exceeds the configured width. These are warnings, not
// errors: the formatter never truncates, so such codes simply come out
// wider than configured.
func (c *RunConfig) WidthWarnings() []string {
	var warnings []string
	for _, e := range c.Customers {
		if !e.Valid {
			continue
		}
		if len(strconv.Itoa(e.ID)) > c.CustomerIDWidth {
			warnings = append(warnings,
				fmt.Sprintf("customer ID %d does not fit CustomerIdWidth %d; its code will be wider", e.ID, c.CustomerIDWidth))
		}
	}
	return warnings
}

// ValidIDs returns the parsed valid customer IDs in list order.
func (c *RunConfig) ValidIDs() []int {
	ids := make([]int, 0, len(c.Customers))
	for _, e := range c.Customers {
		if e.Valid {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// InvalidEntries returns the malformed CustomerIds elements in list order.
func (c *RunConfig) InvalidEntries() []CustomerEntry {
	var bad []CustomerEntry
	for _, e := range c.Customers {
		if !e.Valid {
			bad = append(bad, e)
		}
	}
	return bad
}

// HasCustomer reports whether id is present as a valid entry.
func (c *RunConfig) HasCustomer(id int) bool {
	for _, e := range c.Customers {
		if e.Valid && e.ID == id {
			return true
		}
	}
	return false
}

// AddCustomer appends a customer ID, rejecting negatives and duplicates.
func (c *RunConfig) AddCustomer(id int) error {
	if id < 0 {
		return fmt.Errorf("customer ID must be non-negative, got %d", id)
	}
	if c.HasCustomer(id) {
		return fmt.Errorf("customer ID %d already configured", id)
	}
	c.Customers = append(c.Customers, CustomerEntry{
		Raw:   strconv.Itoa(id),
		ID:    id,
		Valid: true,
	})
	return nil
}

// RemoveCustomer removes a customer ID, failing if it is not configured.
func (c *RunConfig) RemoveCustomer(id int) error {
	for i, e := range c.Customers {
		if e.Valid && e.ID == id {
			c.Customers = append(c.Customers[:i], c.Customers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("customer ID %d not configured", id)
}

// ResolveVaultRoot returns the absolute vault root.
//
// A relative VaultRoot is resolved against the directory that contains the
// config/ folder, so the conventional "." points at the vault directory
// itself.
func (c *RunConfig) ResolveVaultRoot() string {
	if filepath.IsAbs(c.VaultRoot) || c.Path == "" {
		return filepath.Clean(c.VaultRoot)
	}
	base := filepath.Dir(filepath.Dir(c.Path))
	return filepath.Clean(filepath.Join(base, c.VaultRoot))
}

// TemplateDir returns the normalized vault-relative template root with a
// trailing slash.
func (c *RunConfig) TemplateDir() string {
	return paths.NormalizeDirRoot(c.TemplateRelativeRoot)
}

// Save writes the config back to the path it was loaded from.
func (c *RunConfig) Save() error {
	if c.Path == "" {
		return fmt.Errorf("run config has no path")
	}
	return c.SaveTo(c.Path)
}

// SaveTo writes the config to a specific path atomically.
//
// Invalid CustomerIds entries are written back verbatim so a save never
// silently drops data the user has not asked to remove.
func (c *RunConfig) SaveTo(path string) error {
	ids := make([]json.RawMessage, 0, len(c.Customers))
	for _, e := range c.Customers {
		if e.Valid {
			ids = append(ids, json.RawMessage(strconv.Itoa(e.ID)))
			continue
		}
		ids = append(ids, json.RawMessage(e.Raw))
	}

	out := persistedRunConfig{
		VaultRoot:            c.VaultRoot,
		CustomerIDWidth:      c.CustomerIDWidth,
		CustomerIDs:          ids,
		Sections:             c.Sections,
		TemplateRelativeRoot: c.TemplateRelativeRoot,
		EnableCleanup:        c.EnableCleanup,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return atomicfile.WriteFile(path, data, 0o644)
}
