package memory

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// PageSpec is a declarative page definition: viewport, elements and an
// optional scripted timeline, usually loaded from YAML.
type PageSpec struct {
	Viewport ViewportSpec   `mapstructure:"viewport"`
	Elements []ElementSpec  `mapstructure:"elements"`
	Timeline []TimelineStep `mapstructure:"timeline"`
}

// ViewportSpec describes the visible window.
type ViewportSpec struct {
	Height    float64 `mapstructure:"height"`
	ScrollTop float64 `mapstructure:"scroll_top"`
}

// ElementSpec describes one element of the fake page.
type ElementSpec struct {
	ID         string            `mapstructure:"id"`
	Tag        string            `mapstructure:"tag"`
	Parent     string            `mapstructure:"parent"`
	Classes    []string          `mapstructure:"classes"`
	Top        float64           `mapstructure:"top"`
	Height     float64           `mapstructure:"height"`
	Attributes map[string]string `mapstructure:"attributes"`
}

// Timeline actions understood by the simulator.
const (
	ActionClick      = "click"
	ActionHoverEnter = "hover-enter"
	ActionHoverLeave = "hover-leave"
	ActionScroll     = "scroll"
	ActionResize     = "resize"
	ActionWait       = "wait"
)

// TimelineStep is one scripted event, executed At after simulation start.
type TimelineStep struct {
	At     time.Duration `mapstructure:"at"`
	Action string        `mapstructure:"action"`
	Target string        `mapstructure:"target"`
	To     float64       `mapstructure:"to"`
}

// ParsePage decodes a YAML page definition.
func ParsePage(data []byte) (*PageSpec, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing page yaml: %w", err)
	}

	var spec PageSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("building page decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding page definition: %w", err)
	}
	return &spec, nil
}

// LoadPage reads and decodes a YAML page definition file.
func LoadPage(path string) (*PageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page file: %w", err)
	}
	return ParsePage(data)
}
