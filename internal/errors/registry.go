package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	"R001": {
		Category: CategoryNavigation,
		Message:  "Invalid navigation state",
		Detail:   "Navigation state must be nil or a map keyed by strings.",
		DocURL:   "https://pagerouter.dev/docs/errors/R001",
	},
	"R002": {
		Category: CategoryContent,
		Message:  "Content load failed",
		DocURL:   "https://pagerouter.dev/docs/errors/R002",
	},
	"R003": {
		Category: CategoryContent,
		Message:  "Content render failed",
		DocURL:   "https://pagerouter.dev/docs/errors/R003",
	},
	"R004": {
		Category: CategoryGuard,
		Message:  "Guard redirect loop",
		Detail:   "A guard redirected to a path already visited during the same navigation.",
		DocURL:   "https://pagerouter.dev/docs/errors/R004",
	},
	"R005": {
		Category: CategoryGuard,
		Message:  "Guard failed",
		Detail:   "A guard returned an error or panicked; the navigation was blocked.",
		DocURL:   "https://pagerouter.dev/docs/errors/R005",
	},
	"R006": {
		Category: CategoryNavigation,
		Message:  "Invalid routing mode",
		Detail:   `Routing mode must be "history" or "hash".`,
		DocURL:   "https://pagerouter.dev/docs/errors/R006",
	},
	"R007": {
		Category: CategoryContent,
		Message:  "Content module not registered",
		Detail:   "Script sources are served from the module registry; register a loader for this source.",
		DocURL:   "https://pagerouter.dev/docs/errors/R007",
	},
	"R008": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   "https://pagerouter.dev/docs/errors/R008",
	},
	"R009": {
		Category: CategoryProtocol,
		Message:  "Bridge protocol error",
		Detail:   "The browser sent a message the bridge could not decode.",
		DocURL:   "https://pagerouter.dev/docs/errors/R009",
	},
	"R010": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		DocURL:   "https://pagerouter.dev/docs/errors/R010",
	},
}

// GetAllCodes returns all registered error codes, sorted.
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
