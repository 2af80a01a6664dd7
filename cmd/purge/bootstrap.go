package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jamesainslie/purge/pkg/purge/config"
	"github.com/jamesainslie/purge/pkg/purge/logging"
	"github.com/jamesainslie/purge/pkg/purge/output"
)

// app carries what every command needs once configuration is loaded.
type app struct {
	cfg  *config.Config
	logs *logging.Factory
	log  *logging.Logger
}

// bootstrap loads configuration and opens diagnostic logging. The logger
// returned in app.log is tagged with component.
func bootstrap(component string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	lc, err := cfg.LoggingConfig()
	if err != nil {
		return nil, err
	}

	logs, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	a := &app{cfg: cfg, logs: logs, log: logs.Get(component)}
	a.log.Debug("configuration loaded", "file", cfg.File, "program_data_dir", cfg.ProgramDataDir)
	return a, nil
}

// Close flushes diagnostic logs.
func (a *app) Close() {
	if a == nil {
		return
	}
	_ = a.logs.Close()
}

// reportFatal prints err to stderr and appends it to the error log in the
// state directory.
func reportFatal(err error) {
	printError("%v", err)
	if logErr := appendErrorLog(config.ErrorLogPath(), err); logErr != nil {
		printError("failed to write error log: %v", logErr)
	}
}

// appendErrorLog appends one timestamped entry for err to the file at path.
func appendErrorLog(path string, err error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, openErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if openErr != nil {
		return openErr
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          config.AppName,
	})
	logger.Error(err.Error(), "args", os.Args[1:])

	return f.Close()
}

// formatter returns the formatter selected with --output.
func formatter() (output.Formatter, error) {
	format := v.GetString("output")
	if format == "" {
		format = "pretty"
	}

	if format == "template" {
		tmplStr := v.GetString("template")
		if tmplStr == "" {
			return nil, fmt.Errorf("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(tmplStr), nil
	}

	f, err := output.Get(format)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}
	return f, nil
}

// render formats r with the selected formatter and writes it to w.
func render(w io.Writer, r *output.Result) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}
