package structure

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kstrand/autovault/internal/atomicfile"
	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/paths"
	"github.com/kstrand/autovault/internal/template"
)

// ActionKind classifies one planned or performed filesystem action.
type ActionKind string

const (
	ActionCreateDir  ActionKind = "create-dir"
	ActionCreateFile ActionKind = "create-file"
	ActionWriteFile  ActionKind = "write-file" // overwrite during a template pass
	ActionWriteHub   ActionKind = "write-hub"
	ActionKeep       ActionKind = "keep"
)

// Action records one filesystem action with a vault-relative path.
type Action struct {
	Kind ActionKind `json:"kind"`
	Path string     `json:"path"`
}

// ItemError is a per-item failure that did not abort the pass.
type ItemError struct {
	Entry   string `json:"entry"`
	Message string `json:"message"`
}

// Report summarizes a generation or template pass.
type Report struct {
	Actions      []Action    `json:"actions"`
	Errors       []ItemError `json:"errors,omitempty"`
	DirsCreated  int         `json:"dirs_created"`
	FilesCreated int         `json:"files_created"`
	FilesWritten int         `json:"files_written"`
	Kept         int         `json:"kept"`
	HubWritten   bool        `json:"hub_written"`
	DryRun       bool        `json:"dry_run"`
}

// HasErrors reports whether any per-item error occurred.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Options configures a Generator.
type Options struct {
	// Store supplies template bodies. When nil, fresh index files are
	// created empty.
	Store *config.TemplateStore

	// HubFile overrides the hub file name (default Run-Hub.md).
	HubFile string

	// DryRun reports planned actions without touching the filesystem.
	DryRun bool

	// Logger receives per-item diagnostics. Defaults to a no-op logger.
	Logger *zap.Logger

	// Now is the clock used for template timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Generator creates the customer/section tree for one run config.
type Generator struct {
	cfg       *config.RunConfig
	vaultRoot string
	opts      Options
}

// NewGenerator builds a Generator from an explicit, validated config.
func NewGenerator(cfg *config.RunConfig, opts Options) *Generator {
	if opts.HubFile == "" {
		opts.HubFile = DefaultHubFile
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{
		cfg:       cfg,
		vaultRoot: cfg.ResolveVaultRoot(),
		opts:      opts,
	}
}

// Generate ensures the full tree exists and writes the hub file when absent.
//
// Individual malformed customer entries are recorded as per-item errors and
// skipped; the pass continues. A missing vault root or a missing required
// template aborts before any customer is processed.
func (g *Generator) Generate() (*Report, error) {
	return g.run(false)
}

// ApplyTemplates re-renders every index file from the template store,
// overwriting existing content. The hub file is left untouched.
func (g *Generator) ApplyTemplates() (*Report, error) {
	if g.opts.Store == nil {
		return nil, fmt.Errorf("template pass requires a template store")
	}
	return g.run(true)
}

func (g *Generator) run(overwrite bool) (*Report, error) {
	report := &Report{DryRun: g.opts.DryRun}

	info, err := os.Stat(g.vaultRoot)
	if err != nil {
		return nil, fmt.Errorf("vault root %s: %w", g.vaultRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", g.vaultRoot)
	}

	// A missing template aborts the whole run, never a silent per-customer skip.
	if g.opts.Store != nil {
		if missing := g.opts.Store.MissingFor(g.cfg); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", config.ErrTemplateMissing, strings.Join(missing, ", "))
		}
	}

	if err := g.ensureDir(report, RunDirName); err != nil {
		return nil, err
	}

	var hubEntries []HubEntry
	for _, entry := range g.cfg.Customers {
		if !entry.Valid {
			g.opts.Logger.Error("skipping malformed customer ID",
				zap.String("entry", entry.Raw))
			report.Errors = append(report.Errors, ItemError{
				Entry:   entry.Raw,
				Message: "not a non-negative integer",
			})
			continue
		}

		code := FormatCode(entry.ID, g.cfg.CustomerIDWidth)
		// One timestamp pair per customer so every file of the
		// customer carries identical NOW_* values.
		bindings := template.NewBindings(code, "", g.opts.Now())

		if err := g.processCustomer(report, code, bindings, overwrite); err != nil {
			return nil, err
		}

		hubEntries = append(hubEntries, HubEntry{
			Code: code,
			Rel:  RootIndexRel(code),
		})
		g.opts.Logger.Debug("processed customer",
			zap.String("code", code),
			zap.Int("sections", len(g.cfg.Sections)))
	}

	if !overwrite {
		if err := g.writeHub(report, hubEntries); err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (g *Generator) processCustomer(report *Report, code string, bindings template.Bindings, overwrite bool) error {
	if err := g.ensureDir(report, CustomerDirRel(code)); err != nil {
		return err
	}

	rootBody := ""
	if g.opts.Store != nil {
		tmpl, err := g.opts.Store.RootIndex()
		if err != nil {
			return err
		}
		rootBody = template.Apply(tmpl, bindings)
	}
	if err := g.ensureFile(report, RootIndexRel(code), rootBody, overwrite); err != nil {
		return err
	}

	for _, section := range g.cfg.Sections {
		if err := g.ensureDir(report, SectionDirRel(code, section)); err != nil {
			return err
		}

		body := ""
		if g.opts.Store != nil {
			tmpl, err := g.opts.Store.SectionIndex(section)
			if err != nil {
				return err
			}
			body = template.Apply(tmpl, bindings.WithSection(section))
		}
		if err := g.ensureFile(report, SectionIndexRel(code, section), body, overwrite); err != nil {
			return err
		}
	}

	return nil
}

// ensureDir creates a vault-relative directory if missing. Idempotent.
func (g *Generator) ensureDir(report *Report, rel string) error {
	full, err := paths.JoinVault(g.vaultRoot, rel)
	if err != nil {
		return err
	}
	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", rel)
		}
		return nil
	}

	report.Actions = append(report.Actions, Action{Kind: ActionCreateDir, Path: rel})
	report.DirsCreated++
	if g.opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", rel, err)
	}
	return nil
}

// ensureFile creates a vault-relative file if missing, or overwrites it
// during a template pass.
func (g *Generator) ensureFile(report *Report, rel, body string, overwrite bool) error {
	full, err := paths.JoinVault(g.vaultRoot, rel)
	if err != nil {
		return err
	}
	_, err = os.Stat(full)
	exists := err == nil

	switch {
	case !exists:
		report.Actions = append(report.Actions, Action{Kind: ActionCreateFile, Path: rel})
		report.FilesCreated++
	case overwrite:
		report.Actions = append(report.Actions, Action{Kind: ActionWriteFile, Path: rel})
		report.FilesWritten++
	default:
		report.Actions = append(report.Actions, Action{Kind: ActionKeep, Path: rel})
		report.Kept++
		return nil
	}

	if g.opts.DryRun {
		return nil
	}
	if err := atomicfile.WriteFile(full, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// writeHub writes the hub file once; an existing hub is preserved untouched
// so user edits survive repeated generation runs.
func (g *Generator) writeHub(report *Report, entries []HubEntry) error {
	rel := g.opts.HubFile
	full, err := paths.JoinVault(g.vaultRoot, rel)
	if err != nil {
		return err
	}

	if _, err := os.Stat(full); err == nil {
		report.Actions = append(report.Actions, Action{Kind: ActionKeep, Path: rel})
		report.Kept++
		return nil
	}

	report.Actions = append(report.Actions, Action{Kind: ActionWriteHub, Path: rel})
	report.HubWritten = true
	if g.opts.DryRun {
		return nil
	}
	if err := atomicfile.WriteFile(full, []byte(RenderHub(entries)), 0o644); err != nil {
		return fmt.Errorf("write hub %s: %w", rel, err)
	}
	return nil
}
