// Package theme holds the presentation variants of the demo page as data.
package theme

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed themes.yaml
var builtinThemes []byte

// LabelStyle is how one label is presented.
type LabelStyle struct {
	Emoji string   `yaml:"emoji" json:"emoji"`
	Sound string   `yaml:"sound" json:"sound,omitempty"`
	Facts []string `yaml:"facts" json:"-"`
}

// Theme describes the look and copy of the page.
type Theme struct {
	Name           string                `yaml:"name" json:"name"`
	Title          string                `yaml:"title" json:"title"`
	Subtitle       string                `yaml:"subtitle" json:"subtitle"`
	AccentColor    string                `yaml:"accent_color" json:"accentColor"`
	ResultTemplate string                `yaml:"result_template" json:"-"`
	SpeechTemplate string                `yaml:"speech_template" json:"-"`
	CorrectMessage string                `yaml:"correct_message" json:"correctMessage"`
	WrongMessage   string                `yaml:"wrong_message" json:"wrongMessage"`
	AnimationURL   string                `yaml:"animation_url" json:"animationUrl,omitempty"`
	Labels         map[string]LabelStyle `yaml:"labels" json:"labels"`
}

type themeFile struct {
	Themes []Theme `yaml:"themes"`
}

// Registry maps theme names to themes.
type Registry struct {
	themes map[string]*Theme
}

// Load parses the built-in themes and, if path is set, the themes in that
// YAML file. Themes from the file replace built-in ones with the same name.
func Load(path string) (*Registry, error) {
	reg := &Registry{themes: make(map[string]*Theme)}

	if err := reg.add(builtinThemes); err != nil {
		return nil, fmt.Errorf("failed to parse built-in themes: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read theme file: %w", err)
		}
		if err := reg.add(data); err != nil {
			return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
		}
	}

	return reg, nil
}

func (r *Registry) add(data []byte) error {
	var file themeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for i := range file.Themes {
		t := file.Themes[i]
		if err := t.validate(); err != nil {
			return err
		}
		r.themes[t.Name] = &t
	}
	return nil
}

func (t *Theme) validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme without a name")
	}
	for _, label := range []string{"cat", "dog"} {
		if _, ok := t.Labels[label]; !ok {
			return fmt.Errorf("theme %q: missing label %q", t.Name, label)
		}
	}
	if t.ResultTemplate == "" {
		t.ResultTemplate = "{emoji} It's a **{LABEL}** with {percent}% confidence!"
	}
	if t.SpeechTemplate == "" {
		t.SpeechTemplate = "It's a {label} with {percent} percent confidence."
	}
	return nil
}

// Get returns the named theme.
func (r *Registry) Get(name string) (*Theme, error) {
	t, ok := r.themes[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return t, nil
}

// Names lists the registered themes in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Theme) Emoji(label string) string {
	return t.Labels[label].Emoji
}

func (t *Theme) Sound(label string) string {
	return t.Labels[label].Sound
}

// Fact picks a fun fact for label, or "" if the theme has none.
// A nil rnd uses the global source.
func (t *Theme) Fact(label string, rnd *rand.Rand) string {
	facts := t.Labels[label].Facts
	if len(facts) == 0 {
		return ""
	}
	if rnd == nil {
		return facts[rand.Intn(len(facts))]
	}
	return facts[rnd.Intn(len(facts))]
}

// ResultMessage renders the headline shown under the image.
func (t *Theme) ResultMessage(label string, confidence float64) string {
	return t.render(t.ResultTemplate, label, confidence)
}

// Speech renders the sentence read aloud by the page.
func (t *Theme) Speech(label string, confidence float64) string {
	return t.render(t.SpeechTemplate, label, confidence)
}

func (t *Theme) render(tmpl, label string, confidence float64) string {
	return strings.NewReplacer(
		"{emoji}", t.Emoji(label),
		"{LABEL}", strings.ToUpper(label),
		"{label}", label,
		"{percent}", FormatPercent(confidence),
	).Replace(tmpl)
}

// FormatPercent renders a [0,1] confidence as a percentage with two decimals.
func FormatPercent(confidence float64) string {
	return strconv.FormatFloat(confidence*100, 'f', 2, 64)
}
