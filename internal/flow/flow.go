// File: internal/flow/flow.go
package flow

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cbaxter13/webpilot/internal/webdriver"
)

// Actor is the slice of session behavior a flow needs. *webdriver.Session
// satisfies it; tests substitute a recorder.
type Actor interface {
	Click(loc webdriver.Locator) error
	JSClick(loc webdriver.Locator) error
	EnterText(loc webdriver.Locator, text string) error
	ClearText(loc webdriver.Locator) error
	TypeKeys(text string) error
	SelectOption(loc webdriver.Locator, visibleText string) error
	SelectCheckbox(loc webdriver.Locator) error
	WaitVisible(loc webdriver.Locator) error
	WaitGone(loc webdriver.Locator) error
	Text(loc webdriver.Locator) (string, error)
	Attribute(loc webdriver.Locator, name string) (string, error)
}

var _ Actor = (*webdriver.Session)(nil)

// Step actions accepted in flow files.
const (
	ActionClick          = "click"
	ActionJSClick        = "js_click"
	ActionEnterText      = "enter_text"
	ActionClearText      = "clear_text"
	ActionTypeKeys       = "type_keys"
	ActionSelectOption   = "select_option"
	ActionSelectCheckbox = "select_checkbox"
	ActionWaitVisible    = "wait_visible"
	ActionWaitGone       = "wait_gone"
	ActionAssertText     = "assert_text"
	ActionAssertAttr     = "assert_attribute"
	ActionSleep          = "sleep"
)

// Step is one instruction in a flow. Locator uses the compact "type=value"
// form, e.g. "id=username" or "css=#login > input".
type Step struct {
	Action   string `yaml:"action"`
	Locator  string `yaml:"locator,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Option   string `yaml:"option,omitempty"`
	Attr     string `yaml:"attr,omitempty"`
	Want     string `yaml:"want,omitempty"`
	Duration string `yaml:"duration,omitempty"`
}

// Flow is a declarative browser script: a start URL and an ordered step list.
type Flow struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Steps []Step `yaml:"steps"`
}

// Load reads and validates a flow file.
func Load(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read flow file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals and validates flow YAML. Unknown fields are rejected so a
// typoed key fails loudly instead of silently doing nothing.
func Parse(data []byte) (*Flow, error) {
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)

	var f Flow
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("could not parse flow: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Flow) validate() error {
	if f.URL == "" {
		return fmt.Errorf("flow is missing a url")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("flow has no steps")
	}
	for i, step := range f.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch s.Action {
	case ActionClick, ActionJSClick, ActionClearText, ActionSelectCheckbox, ActionWaitVisible, ActionWaitGone:
		return s.needLocator()
	case ActionEnterText:
		return s.needLocator()
	case ActionTypeKeys:
		if s.Text == "" {
			return fmt.Errorf("%s requires text", s.Action)
		}
		return nil
	case ActionSelectOption:
		if err := s.needLocator(); err != nil {
			return err
		}
		if s.Option == "" {
			return fmt.Errorf("%s requires an option", s.Action)
		}
		return nil
	case ActionAssertText:
		return s.needLocator()
	case ActionAssertAttr:
		if err := s.needLocator(); err != nil {
			return err
		}
		if s.Attr == "" {
			return fmt.Errorf("%s requires an attr", s.Action)
		}
		return nil
	case ActionSleep:
		if _, err := time.ParseDuration(s.Duration); err != nil {
			return fmt.Errorf("%s requires a valid duration: %w", s.Action, err)
		}
		return nil
	case "":
		return fmt.Errorf("step is missing an action")
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
}

func (s Step) needLocator() error {
	if s.Locator == "" {
		return fmt.Errorf("%s requires a locator", s.Action)
	}
	_, err := s.locator()
	return err
}

// locator parses the compact "type=value" form. The value may itself contain
// '=' characters, as XPath predicates often do.
func (s Step) locator() (webdriver.Locator, error) {
	locType, value, found := strings.Cut(s.Locator, "=")
	if !found || locType == "" || value == "" {
		return webdriver.Locator{}, fmt.Errorf("locator %q is not in type=value form", s.Locator)
	}
	switch locType {
	case webdriver.ByID, webdriver.ByXPath, webdriver.ByClass, webdriver.ByCSS, webdriver.ByTag:
		return webdriver.Locator{Type: locType, Value: value}, nil
	default:
		return webdriver.Locator{}, fmt.Errorf("locator %q has unknown type %q", s.Locator, locType)
	}
}

// Run executes the steps in order against the actor, stopping at the first
// failure.
func (f *Flow) Run(actor Actor, logger *zap.Logger) error {
	log := logger.Named("flow")
	if f.Name != "" {
		log = log.With(zap.String("flow", f.Name))
	}
	log.Info("Running flow.", zap.String("url", f.URL), zap.Int("steps", len(f.Steps)))

	for i, step := range f.Steps {
		log.Debug("Executing step.", zap.Int("step", i+1), zap.String("action", step.Action))
		if err := step.run(actor); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}

	log.Info("Flow completed.")
	return nil
}

func (s Step) run(actor Actor) error {
	if s.Action == ActionSleep {
		d, err := time.ParseDuration(s.Duration)
		if err != nil {
			return err
		}
		time.Sleep(d)
		return nil
	}
	if s.Action == ActionTypeKeys {
		return actor.TypeKeys(s.Text)
	}

	loc, err := s.locator()
	if err != nil {
		return err
	}

	switch s.Action {
	case ActionClick:
		return actor.Click(loc)
	case ActionJSClick:
		return actor.JSClick(loc)
	case ActionEnterText:
		return actor.EnterText(loc, s.Text)
	case ActionClearText:
		return actor.ClearText(loc)
	case ActionSelectOption:
		return actor.SelectOption(loc, s.Option)
	case ActionSelectCheckbox:
		return actor.SelectCheckbox(loc)
	case ActionWaitVisible:
		return actor.WaitVisible(loc)
	case ActionWaitGone:
		return actor.WaitGone(loc)
	case ActionAssertText:
		got, err := actor.Text(loc)
		if err != nil {
			return err
		}
		if strings.TrimSpace(got) != s.Want {
			return fmt.Errorf("text of %s is %q, want %q", loc, got, s.Want)
		}
		return nil
	case ActionAssertAttr:
		got, err := actor.Attribute(loc, s.Attr)
		if err != nil {
			return err
		}
		if got != s.Want {
			return fmt.Errorf("attribute %s of %s is %q, want %q", s.Attr, loc, got, s.Want)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
}
