package cli

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kstrand/autovault/internal/config"
	"github.com/kstrand/autovault/internal/history"
	"github.com/kstrand/autovault/internal/structure"
	"github.com/kstrand/autovault/internal/ui"
)

// loadRunConfig loads and validates the run config. Any failure here is
// fatal: the config is the source of truth and nothing runs without it.
func loadRunConfig() (*config.RunConfig, error) {
	cfg, err := config.LoadRunConfig(getRunConfigPath())
	if err != nil {
		if errors.Is(err, config.ErrRunConfigNotFound) {
			return nil, handleError(ErrConfigNotFound, err,
				fmt.Sprintf("Run 'avt init %s' to create a vault skeleton", getVaultPath()))
		}
		return nil, handleError(ErrConfigInvalid, err, "")
	}
	if err := cfg.Validate(); err != nil {
		// ozzo validation errors marshal to a field->message map.
		return nil, handleErrorWithDetails(ErrConfigInvalid,
			fmt.Sprintf("invalid run config %s: %v", cfg.Path, err), "", err)
	}
	return cfg, nil
}

// loadTemplateStore loads templates.json next to the run config.
func loadTemplateStore(cfg *config.RunConfig) (*config.TemplateStore, error) {
	store, err := config.LoadTemplateStore(config.TemplateStorePathFor(cfg.Path))
	if err != nil {
		if errors.Is(err, config.ErrTemplateStoreNotFound) {
			return nil, handleError(ErrTemplateStoreNotFound, err,
				"Run 'avt init' to create a default template store")
		}
		return nil, handleError(ErrConfigInvalid, err, "")
	}
	return store, nil
}

// widthWarnings converts config width overflows into response warnings
// and prints them in text mode.
func widthWarnings(cfg *config.RunConfig) []Warning {
	var warnings []Warning
	for _, msg := range cfg.WidthWarnings() {
		warnings = append(warnings, Warning{Code: WarnWidthOverflow, Message: msg})
		if !isJSONOutput() {
			fmt.Println(ui.Warning(msg))
		}
	}
	return warnings
}

// recordHistory appends a run record to the vault history database.
// History is derived data: failure to record is a warning, never an error.
func recordHistory(run history.Run) {
	store, err := history.Open(getVaultPath())
	if err != nil {
		logger.Warn("history update failed", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.Record(run); err != nil {
		logger.Warn("history update failed", zap.Error(err))
	}
}

// newRun builds a history record for a structure pass.
func newRun(op string, started time.Time, report *structure.Report) history.Run {
	return history.Run{
		Op:         op,
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Created:    report.DirsCreated + report.FilesCreated + report.FilesWritten,
		Kept:       report.Kept,
		Errors:     len(report.Errors),
		OK:         !report.HasErrors(),
		DryRun:     report.DryRun,
	}
}

// printItemErrors prints per-item errors in text mode.
func printItemErrors(errs []structure.ItemError) {
	for _, e := range errs {
		fmt.Println(ui.Errorf("%s: %s", e.Entry, e.Message))
	}
}
