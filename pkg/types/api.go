package types

// ModeParameters mirrors the sampling parameters of a stored mode.
type ModeParameters struct {
	// example: 0.8
	Temperature float64 `json:"temperature" example:"0.8"`
	// example: 40
	TopK int `json:"top_k" example:"40"`
	// example: 0.9
	TopP float64 `json:"top_p" example:"0.9"`
	// example: 2000
	ContextSize int `json:"ctx_size" example:"2000"`
	// example: 7
	Threads int `json:"threads" example:"7"`
	// example: 0
	GPULayers int `json:"gpu_layers" example:"0"`
	// example: true
	InteractiveFirst bool `json:"interactive_first" example:"true"`
}

// ModeView is the read-only JSON shape of one saved mode.
type ModeView struct {
	// 1-based position in the listing; this is the number a user types to select it.
	// example: 1
	Position int `json:"position" example:"1"`
	// N of the mode_<N> key in the configuration file.
	// example: 1
	Index int `json:"index" example:"1"`
	// example: Fast
	Name string `json:"name" example:"Fast"`
	// example: quick answers
	Description string `json:"description" example:"quick answers"`
	// example: /home/user/models/a.gguf
	ModelPath string `json:"model_path" example:"/home/user/models/a.gguf"`
	// example: /home/user/query_gguf/prompts/x.txt
	PromptPath string `json:"prompt_path" example:"/home/user/query_gguf/prompts/x.txt"`
	// Whether default_mode points at this mode.
	Default    bool           `json:"default"`
	Parameters ModeParameters `json:"parameters"`
}

// ModesResponse wraps the list returned by GET /modes.
type ModesResponse struct {
	Modes []ModeView `json:"modes"`
	// Index stored in default_mode, 0 when unset.
	// example: 1
	DefaultIndex int `json:"default_index,omitempty" example:"1"`
}

// CommandResponse is returned by GET /modes/{n}/command.
type CommandResponse struct {
	// Argument vector, program first.
	Argv []string `json:"argv"`
	// Shell-quoted display form.
	// example: "/usr/local/bin/llama-cli" -m "/models/a.gguf" --file "/prompts/x.txt" --temp 0.8
	Command string `json:"command"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: mode not found: 3
	Error string `json:"error" example:"mode not found: 3"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
