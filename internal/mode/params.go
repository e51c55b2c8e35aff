package mode

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Parameter keys as they appear in a stored mode entry.
const (
	KeyTemperature      = "temp"
	KeyTopK             = "top_k"
	KeyTopP             = "top_p"
	KeyContextSize      = "ctx_size"
	KeyThreads          = "threads"
	KeyGPULayers        = "gpu_layers"
	KeyInteractiveFirst = "interactive_first"
)

// cpuCount is swapped in tests.
var cpuCount = runtime.NumCPU

// Parameters are the sampling and runtime knobs passed to llama-cli.
type Parameters struct {
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	TopK             int     `json:"top_k" yaml:"top_k"`
	TopP             float64 `json:"top_p" yaml:"top_p"`
	ContextSize      int     `json:"context_size" yaml:"context_size"`
	ThreadCount      int     `json:"thread_count" yaml:"thread_count"`
	GPULayers        int     `json:"gpu_layers" yaml:"gpu_layers"`
	InteractiveFirst bool    `json:"interactive_first" yaml:"interactive_first"`
}

// DefaultThreadCount is the detected CPU count minus one, at least 1.
func DefaultThreadCount() int {
	if n := cpuCount(); n > 1 {
		return n - 1
	}
	return 1
}

// ClampThreads bounds n to [1, CPU count].
func ClampThreads(n int) int {
	if n < 1 {
		return 1
	}
	if max := cpuCount(); n > max {
		return max
	}
	return n
}

// DefaultParameters returns the values used for any field a mode omits.
func DefaultParameters() Parameters {
	return Parameters{
		Temperature:      0.8,
		TopK:             40,
		TopP:             0.9,
		ContextSize:      2000,
		ThreadCount:      DefaultThreadCount(),
		GPULayers:        0,
		InteractiveFirst: true,
	}
}

// Set assigns one key=value token. Unknown keys report known=false and leave
// p untouched; unparseable values return an error and also leave p untouched.
func (p *Parameters) Set(key, value string) (known bool, err error) {
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case KeyTemperature:
		return true, setFloat(&p.Temperature, value)
	case KeyTopK:
		return true, setInt(&p.TopK, value)
	case KeyTopP:
		return true, setFloat(&p.TopP, value)
	case KeyContextSize:
		return true, setInt(&p.ContextSize, value)
	case KeyThreads:
		var n int
		if err := setInt(&n, value); err != nil {
			return true, err
		}
		p.ThreadCount = ClampThreads(n)
		return true, nil
	case KeyGPULayers:
		return true, setInt(&p.GPULayers, value)
	case KeyInteractiveFirst:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return true, fmt.Errorf("%s: invalid boolean %q", KeyInteractiveFirst, value)
		}
		p.InteractiveFirst = b
		return true, nil
	default:
		return false, nil
	}
}

func setFloat(dst *float64, s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*dst = v
	return nil
}

func setInt(dst *int, s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*dst = v
	return nil
}

// FormatFloat renders floats in their shortest exact decimal form
// (0.8, 1, 0.95).
func FormatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Tokens returns the canonical key=value list in fixed write order.
func (p Parameters) Tokens() []string {
	return []string{
		KeyTemperature + "=" + FormatFloat(p.Temperature),
		KeyTopK + "=" + strconv.Itoa(p.TopK),
		KeyTopP + "=" + FormatFloat(p.TopP),
		KeyContextSize + "=" + strconv.Itoa(p.ContextSize),
		KeyThreads + "=" + strconv.Itoa(p.ThreadCount),
		KeyGPULayers + "=" + strconv.Itoa(p.GPULayers),
		KeyInteractiveFirst + "=" + strconv.FormatBool(p.InteractiveFirst),
	}
}
