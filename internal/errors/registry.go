package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render scope errors (H001-H099)
	// ============================================

	"H001": {
		Category:   CategoryUsage,
		Message:    "No active render",
		Detail:     "A hook or context operation ran while no host was current. Hooks only work inside a render function passed to Establish.",
		Suggestion: "Move the call into the render function, or wrap the caller with hooks.Establish(host, render)",
	},
	"H002": {
		Category: CategorySetup,
		Message:  "No reactive provider registered",
		Detail:   "A cell had to be constructed but no reactive primitive provider is available.",
		Suggestion: "Either pass hooks.WithProvider(p) when creating the Runtime, " +
			"or register a process-wide provider once at startup with reactive.Register(p)",
	},
	"H003": {
		Category:   CategoryContext,
		Message:    "Missing context",
		Detail:     "The context was consumed with no Provider above it and no default value.",
		Suggestion: "Wrap the consumer in the context's Provider, or create the context with CreateContextWithDefault",
	},
	"H004": {
		Category:   CategoryInternal,
		Message:    "Render scope invariant violated",
		Detail:     "Per-host bookkeeping expected to exist was missing. This is a bug in hookscope.",
		Suggestion: "Please report this with the stack trace",
	},
	"H005": {
		Category:   CategoryUsage,
		Message:    "Hook order changed",
		Detail:     "Hooks must be called in the same order on every render pass of a host. Conditional or looped hook calls shift every later slot.",
		Suggestion: "Call hooks unconditionally at the top of the render function",
	},
	"H006": {
		Category:   CategoryUsage,
		Message:    "Host re-entered during its own render",
		Detail:     "A render pass for a host started while an outer render pass for the same host was still running under a different host.",
		Suggestion: "Render each host from a single call site; schedule re-renders instead of nesting them",
	},
	"H007": {
		Category:   CategoryUsage,
		Message:    "Zero-size host",
		Detail:     "Pointers to zero-size values may all share one address, so they cannot tell hosts apart.",
		Suggestion: "Use hooks.NewHost(), or give the host type at least one field",
	},

	// ============================================
	// Configuration errors (H120-H199)
	// ============================================

	"H120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "The configuration file could not be read or parsed.",
		Suggestion: "Check that hookscope.json is valid JSON",
	},
	"H121": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "The configuration file does not exist at the given path.",
		Suggestion: "Create hookscope.json or omit --config to use defaults",
	},
	"H122": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Detail:     "A configuration value is out of range or malformed.",
		Suggestion: "Check the value against the documented defaults",
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
