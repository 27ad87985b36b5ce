package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kstrand/autovault/internal/atomicfile"
)

// TemplateStoreName is the canonical template store file name, expected as
// a sibling of the run config.
const TemplateStoreName = "templates.json"

// ErrTemplateStoreNotFound indicates the templates.json file does not exist.
var ErrTemplateStoreNotFound = errors.New("template store not found")

// ErrTemplateMissing indicates a required template body is absent.
var ErrTemplateMissing = errors.New("missing template")

// TemplateStore is the typed view of config/templates.json. The JSON file
// is the source of truth; copies exported into the vault's template folder
// are working copies that can drift until explicitly re-exported or synced.
type TemplateStore struct {
	Index IndexTemplates `json:"index"`

	// Notes maps section name to the note template consumed by the
	// external Obsidian Templater plugin. Not rendered by this pipeline.
	Notes map[string]string `json:"notes"`

	// Path is where the store was loaded from. Empty for in-memory stores.
	Path string `json:"-"`
}

// IndexTemplates holds the bodies applied to index files.
type IndexTemplates struct {
	Root     string            `json:"root"`
	Sections map[string]string `json:"sections"`
}

type templateStoreFile struct {
	Templates *TemplateStore `json:"templates"`
}

// LoadTemplateStore reads config/templates.json from path.
func LoadTemplateStore(path string) (*TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateStoreNotFound, path)
		}
		return nil, fmt.Errorf("read template store %s: %w", path, err)
	}

	var file templateStoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template store %s: %w", path, err)
	}
	if file.Templates == nil {
		return nil, fmt.Errorf("template store %s: missing required key templates", path)
	}

	store := file.Templates
	store.Path = path
	if store.Index.Sections == nil {
		store.Index.Sections = make(map[string]string)
	}
	if store.Notes == nil {
		store.Notes = make(map[string]string)
	}
	return store, nil
}

// TemplateStorePathFor returns the templates.json path next to a run config.
func TemplateStorePathFor(runConfigPath string) string {
	return filepath.Join(filepath.Dir(runConfigPath), TemplateStoreName)
}

// RootIndex returns the root index template body.
func (s *TemplateStore) RootIndex() (string, error) {
	if s.Index.Root == "" {
		return "", fmt.Errorf("%w: index.root", ErrTemplateMissing)
	}
	return s.Index.Root, nil
}

// SectionIndex returns the index template body for a section.
func (s *TemplateStore) SectionIndex(section string) (string, error) {
	body, ok := s.Index.Sections[section]
	if !ok || body == "" {
		return "", fmt.Errorf("%w: index.sections.%s", ErrTemplateMissing, section)
	}
	return body, nil
}

// Note returns the note template body for a section.
func (s *TemplateStore) Note(section string) (string, error) {
	body, ok := s.Notes[section]
	if !ok || body == "" {
		return "", fmt.Errorf("%w: notes.%s", ErrTemplateMissing, section)
	}
	return body, nil
}

// MissingFor lists the template names a run over cfg would need but the
// store does not provide. An empty result means a template pass can run.
func (s *TemplateStore) MissingFor(cfg *RunConfig) []string {
	var missing []string
	if s.Index.Root == "" {
		missing = append(missing, "index.root")
	}
	for _, section := range cfg.Sections {
		if s.Index.Sections[section] == "" {
			missing = append(missing, "index.sections."+section)
		}
	}
	return missing
}

// WorkingCopies returns the vault working-copy file name for every template
// body in the store, in a stable order: root, section indexes, notes.
func (s *TemplateStore) WorkingCopies(cfg *RunConfig) []WorkingCopy {
	copies := []WorkingCopy{{Name: RootWorkingCopyName, Body: s.Index.Root}}
	for _, section := range cfg.Sections {
		copies = append(copies, WorkingCopy{
			Name: SectionWorkingCopyName(section),
			Body: s.Index.Sections[section],
		})
	}
	for _, section := range cfg.Sections {
		copies = append(copies, WorkingCopy{
			Name: NoteWorkingCopyName(section),
			Body: s.Notes[section],
		})
	}
	return copies
}

// SetWorkingCopy writes a working-copy body back into the store, returning
// false when name does not map to a known template slot for cfg.
func (s *TemplateStore) SetWorkingCopy(cfg *RunConfig, name, body string) bool {
	if name == RootWorkingCopyName {
		s.Index.Root = body
		return true
	}
	for _, section := range cfg.Sections {
		switch name {
		case SectionWorkingCopyName(section):
			s.Index.Sections[section] = body
			return true
		case NoteWorkingCopyName(section):
			s.Notes[section] = body
			return true
		}
	}
	return false
}

// WorkingCopy is one exported template file in the vault template folder.
type WorkingCopy struct {
	Name string // file name inside the template root
	Body string
}

// RootWorkingCopyName is the exported file name of the root index template.
const RootWorkingCopyName = "Run-Root-Index.md"

// SectionWorkingCopyName returns the exported file name of a section index template.
func SectionWorkingCopyName(section string) string {
	return "Run-" + section + "-Index.md"
}

// NoteWorkingCopyName returns the exported file name of a section note template.
func NoteWorkingCopyName(section string) string {
	return "Run-" + section + "-Note.md"
}

// Save writes the store back to the path it was loaded from.
func (s *TemplateStore) Save() error {
	if s.Path == "" {
		return fmt.Errorf("template store has no path")
	}
	return s.SaveTo(s.Path)
}

// SaveTo writes the store to a specific path atomically.
func (s *TemplateStore) SaveTo(path string) error {
	data, err := json.MarshalIndent(templateStoreFile{Templates: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template store: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return atomicfile.WriteFile(path, data, 0o644)
}
