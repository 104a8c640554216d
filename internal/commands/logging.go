package commands

import (
	"strings"

	"github.com/oriolmontcreus/capsulo-sub000/internal/logging"
	"github.com/oriolmontcreus/capsulo-sub000/pkg/interfaces"
)

const commandModuleRoot = "editor.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriching it with
// consistent structured fields so command executions stay consistent across handlers.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
