package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Registered codes.
const (
	CodeInvalidScope   = "M001"
	CodeDoubleDisposal = "M002"
	CodeEventExists    = "M003"

	CodeHierarchy = "M020"
	CodeNotFound  = "M021"

	CodeConfigNotFound = "M040"
	CodeConfigParse    = "M041"
	CodeConfigInvalid  = "M042"
	CodeConfigWatch    = "M043"

	CodeUnknownMode = "M060"
	CodeUsage       = "M061"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (M001-M019)
	// ============================================

	CodeInvalidScope: {
		Category: CategoryRuntime,
		Message:  "Global mutation listeners must be registered on a document element",
		Detail:   "OnInsertion, OnRemoval and OnAttributeChange observe a whole document. The node passed is not the document element of its owner document.",
	},
	CodeDoubleDisposal: {
		Category: CategoryRuntime,
		Message:  "Subscription disposed more than once",
		Detail:   "Dispose was called on a subscription that had already been disposed. Each subscription must be disposed exactly once.",
	},
	CodeEventExists: {
		Category: CategoryRuntime,
		Message:  "Event type is already registered",
		Detail:   "AddEvent was called with an event type that already has a definition. Register it under a different name or use a new Registry.",
	},

	// ============================================
	// Tree Errors (M020-M039)
	// ============================================

	CodeHierarchy: {
		Category: CategoryTree,
		Message:  "Node cannot be inserted at this position",
		Detail:   "The insertion would make a node its own ancestor, or the parent cannot hold children of this kind.",
	},
	CodeNotFound: {
		Category: CategoryTree,
		Message:  "Reference node is not a child of this parent",
		Detail:   "The node passed as the reference or old child does not belong to the parent the operation was called on.",
	},

	// ============================================
	// Config Errors (M040-M059)
	// ============================================

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file does not exist at the given path.",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
		Detail:   "The configuration file is not valid JSON or YAML.",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is outside its allowed range.",
	},
	CodeConfigWatch: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be watched",
		Detail:   "The file watcher could not be created for the configuration file.",
	},

	// ============================================
	// CLI Errors (M060-M079)
	// ============================================

	CodeUnknownMode: {
		Category: CategoryCLI,
		Message:  "Unknown observation mode",
		Detail:   "The mode must be \"native\" or \"synthetic\".",
	},
	CodeUsage: {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command line could not be parsed or the command stopped on an unexpected error.",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
