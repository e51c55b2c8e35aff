package types

// Model represents a GGUF model file found under a configured model directory.
type Model struct {
	// File name, used as the display identifier.
	// example: TinyLlama.Q4_K_M.gguf
	ID string `json:"id" example:"TinyLlama.Q4_K_M.gguf"`
	// Human-friendly name (file name without extension).
	// example: TinyLlama.Q4_K_M
	Name string `json:"name" example:"TinyLlama.Q4_K_M"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/TinyLlama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Quantization suffix parsed from the file name, when present.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Size of the file in bytes.
	// example: 668788096
	SizeBytes int64 `json:"size_bytes,omitempty" example:"668788096"`
}

// Prompt is a prompt file found under the prompts directory.
type Prompt struct {
	// Path relative to the prompts directory.
	// example: coding/review.txt
	Name string `json:"name" example:"coding/review.txt"`
	// Canonical absolute path.
	// example: /home/user/query_gguf/prompts/coding/review.txt
	Path string `json:"path" example:"/home/user/query_gguf/prompts/coding/review.txt"`
}
