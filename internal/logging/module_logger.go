package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-obsidian-export/pkg/interfaces"
)

const (
	rootModule     = "export"
	walkerModule   = "export.walker"
	engineModule   = "export.engine"
	embedModule    = "export.embed"
	linkModule     = "export.linkrewrite"
	postprocModule = "export.postprocess"
	exporterModule = "export.exporter"
)

const (
	fieldNotePath  = "note_path"
	fieldEmbedPath = "embed_path"
	fieldAction    = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// WalkerLogger returns the logger namespace reserved for vault traversal.
func WalkerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, walkerModule)
}

// EngineLogger returns the logger namespace reserved for the Markdown
// Event Pipeline.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// EmbedLogger returns the logger namespace reserved for the embed expander.
func EmbedLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, embedModule)
}

// LinkLogger returns the logger namespace reserved for the link rewriter.
func LinkLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linkModule)
}

// PostprocessLogger returns the logger namespace reserved for the
// postprocessor chain.
func PostprocessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postprocModule)
}

// ExporterLogger returns the logger namespace reserved for the exporter
// driver.
func ExporterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exporterModule)
}

// WithNoteContext enriches the provided logger with common per-note fields
// such as the note path, the embed chain path (if inside an embed), and
// the action being performed. Empty values are ignored.
func WithNoteContext(logger interfaces.Logger, notePath, embedPath, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(notePath); trimmed != "" {
		fields[fieldNotePath] = trimmed
	}
	if trimmed := strings.TrimSpace(embedPath); trimmed != "" {
		fields[fieldEmbedPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
