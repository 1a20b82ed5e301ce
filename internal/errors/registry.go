package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryReactive,
		Message:  "Cell poisoned by panic during update",
		Detail:   "A previous Update mutator panicked while holding the value lock. The cell's value may be partially modified and every later operation on it fails.",
		DocURL:   "https://cellstore.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryReactive,
		Message:  "Nil observer callback",
		Detail:   "An observation session needs a non-nil invalidate callback.",
		DocURL:   "https://cellstore.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryReactive,
		Message:  "Nil subscriber callback",
		Detail:   "Subscribe was called with a nil callback.",
		DocURL:   "https://cellstore.dev/docs/errors/E203",
	},

	// ============================================
	// Store Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryStore,
		Message:  "Store not registered",
		Detail:   "No store of this type is registered and the caller required one.",
		DocURL:   "https://cellstore.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryStore,
		Message:  "Unknown store context",
		Detail:   "No store context with this name has been created.",
		DocURL:   "https://cellstore.dev/docs/errors/E302",
	},

	// ============================================
	// Config Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryConfig,
		Message:  "Failed to load configuration",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://cellstore.dev/docs/errors/E401",
	},
	"E402": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   "https://cellstore.dev/docs/errors/E402",
	},

	// ============================================
	// CLI Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryCLI,
		Message:  "Inspector failed to start",
		Detail:   "The devtools HTTP server could not bind or serve.",
		DocURL:   "https://cellstore.dev/docs/errors/E501",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
