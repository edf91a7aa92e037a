// File: internal/webdriver/actions.go
package webdriver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"
)

// waitFor resolves the locator to a native strategy, polls the condition until
// it holds or the configured timeout elapses, and returns the element.
func (s *Session) waitFor(loc Locator, cond Condition) (selenium.WebElement, error) {
	by, err := loc.strategy()
	if err != nil {
		return nil, err
	}
	timeout := s.cfg.Wait.Timeout
	if err := s.driver.WaitWithTimeoutAndInterval(cond.check(by, loc.Value), timeout, s.cfg.Wait.PollInterval); err != nil {
		return nil, &ElementTimeoutError{Locator: loc, Condition: cond.String(), Timeout: timeout, Err: err}
	}
	elem, err := s.driver.FindElement(by, loc.Value)
	if err != nil {
		return nil, &ActionError{Op: "resolve", Locator: loc, Err: err}
	}
	return elem, nil
}

// WaitFor blocks until the element matching loc satisfies cond, returning the
// resolved element.
func (s *Session) WaitFor(loc Locator, cond Condition) (selenium.WebElement, error) {
	var elem selenium.WebElement
	err := s.capture("WaitFor", func() error {
		var err error
		elem, err = s.waitFor(loc, cond)
		return err
	})
	return elem, err
}

// WaitPresent blocks until the element is attached to the DOM.
func (s *Session) WaitPresent(loc Locator) error {
	return s.capture("WaitPresent", func() error {
		_, err := s.waitFor(loc, CondPresent)
		return err
	})
}

// WaitVisible blocks until the element is displayed on the page.
func (s *Session) WaitVisible(loc Locator) error {
	return s.capture("WaitVisible", func() error {
		_, err := s.waitFor(loc, CondVisible)
		return err
	})
}

// WaitGone blocks until the element is absent from the DOM or no longer displayed.
func (s *Session) WaitGone(loc Locator) error {
	return s.capture("WaitGone", func() error {
		by, err := loc.strategy()
		if err != nil {
			return err
		}
		timeout := s.cfg.Wait.Timeout
		if err := s.driver.WaitWithTimeoutAndInterval(goneCheck(by, loc.Value), timeout, s.cfg.Wait.PollInterval); err != nil {
			return &ElementTimeoutError{Locator: loc, Condition: "gone", Timeout: timeout, Err: err}
		}
		return nil
	})
}

// Click waits for the element to become clickable and clicks it.
func (s *Session) Click(loc Locator) error {
	return s.capture("Click", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if err := elem.Click(); err != nil {
			return &ActionError{Op: "Click", Locator: loc, Err: err}
		}
		s.logger.Debug("Clicked element.", zap.String("locator", loc.String()))
		return nil
	})
}

// JSClick clicks through the element's JavaScript click handler. Useful when
// another element overlays the target and intercepts native clicks.
func (s *Session) JSClick(loc Locator) error {
	return s.capture("JSClick", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if _, err := s.driver.ExecuteScript("arguments[0].click();", []interface{}{elem}); err != nil {
			return &ActionError{Op: "JSClick", Locator: loc, Err: err}
		}
		s.logger.Debug("Clicked element via JS.", zap.String("locator", loc.String()))
		return nil
	})
}

// CursorClick moves the pointer to the element and clicks at its position.
func (s *Session) CursorClick(loc Locator) error {
	return s.capture("CursorClick", func() error {
		elem, err := s.waitFor(loc, CondVisible)
		if err != nil {
			return err
		}
		if err := elem.MoveTo(0, 0); err != nil {
			return &ActionError{Op: "CursorClick", Locator: loc, Err: err}
		}
		if err := s.driver.Click(selenium.LeftButton); err != nil {
			return &ActionError{Op: "CursorClick", Locator: loc, Err: err}
		}
		s.logger.Debug("Moved cursor to element and clicked.", zap.String("locator", loc.String()))
		return nil
	})
}

// EnterText clears the input matching loc and types text into it.
func (s *Session) EnterText(loc Locator, text string) error {
	return s.capture("EnterText", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if err := elem.Clear(); err != nil {
			return &ActionError{Op: "EnterText", Locator: loc, Err: err}
		}
		if err := elem.SendKeys(text); err != nil {
			return &ActionError{Op: "EnterText", Locator: loc, Err: err}
		}
		s.logger.Debug("Entered text.", zap.String("locator", loc.String()), zap.Int("text_length", len(text)))
		return nil
	})
}

// ClearText clears the text in the input matching loc.
func (s *Session) ClearText(loc Locator) error {
	return s.capture("ClearText", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if err := elem.Clear(); err != nil {
			return &ActionError{Op: "ClearText", Locator: loc, Err: err}
		}
		return nil
	})
}

// TypeKeys sends text to the focused element one rune at a time, pacing each
// keystroke by the configured key delay to avoid dropped characters.
func (s *Session) TypeKeys(text string) error {
	return s.capture("TypeKeys", func() error {
		for _, r := range text {
			// The keys endpoint types the whole sequence it is given, and
			// KeyUp posts the very same request as KeyDown. One call per rune,
			// or every character lands twice.
			if err := s.driver.KeyDown(string(r)); err != nil {
				return &ActionError{Op: "TypeKeys", Err: err}
			}
			if s.cfg.Wait.KeyDelay > 0 {
				time.Sleep(s.cfg.Wait.KeyDelay)
			}
		}
		s.logger.Debug("Typed keys into focused element.", zap.Int("text_length", len(text)))
		return nil
	})
}

// Text waits for the element to be visible and returns its text content.
func (s *Session) Text(loc Locator) (string, error) {
	var text string
	err := s.capture("Text", func() error {
		elem, err := s.waitFor(loc, CondVisible)
		if err != nil {
			return err
		}
		text, err = elem.Text()
		if err != nil {
			return &ActionError{Op: "Text", Locator: loc, Err: err}
		}
		return nil
	})
	return text, err
}

// Attribute waits for the element to be visible and returns the named attribute.
func (s *Session) Attribute(loc Locator, name string) (string, error) {
	var value string
	err := s.capture("Attribute", func() error {
		elem, err := s.waitFor(loc, CondVisible)
		if err != nil {
			return err
		}
		value, err = elem.GetAttribute(name)
		if err != nil {
			return &ActionError{Op: "Attribute", Locator: loc, Err: err}
		}
		return nil
	})
	return value, err
}

// SelectCheckbox checks the checkbox matching loc. Already-selected checkboxes
// are left alone, so the call is safe to repeat.
func (s *Session) SelectCheckbox(loc Locator) error {
	return s.capture("SelectCheckbox", func() error {
		elem, err := s.waitFor(loc, CondSelectable)
		if err != nil {
			return err
		}
		selected, err := elem.IsSelected()
		if err != nil {
			return &ActionError{Op: "SelectCheckbox", Locator: loc, Err: err}
		}
		if selected {
			s.logger.Debug("Checkbox already selected.", zap.String("locator", loc.String()))
			return nil
		}
		// JS click avoids styled checkbox overlays swallowing the native click.
		if _, err := s.driver.ExecuteScript("arguments[0].click();", []interface{}{elem}); err != nil {
			return &ActionError{Op: "SelectCheckbox", Locator: loc, Err: err}
		}
		return nil
	})
}

// SelectOption picks the option with the given visible text from the dropdown
// matching loc.
func (s *Session) SelectOption(loc Locator, visibleText string) error {
	return s.capture("SelectOption", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if err := elem.Click(); err != nil {
			return &ActionError{Op: "SelectOption", Locator: loc, Err: err}
		}
		options, err := elem.FindElements(selenium.ByTagName, "option")
		if err != nil {
			return &ActionError{Op: "SelectOption", Locator: loc, Err: err}
		}
		for _, option := range options {
			text, err := option.Text()
			if err != nil {
				continue
			}
			if strings.TrimSpace(text) == visibleText {
				if err := option.Click(); err != nil {
					return &ActionError{Op: "SelectOption", Locator: loc, Err: err}
				}
				s.logger.Debug("Selected dropdown option.", zap.String("locator", loc.String()), zap.String("option", visibleText))
				return nil
			}
		}
		return &ActionError{Op: "SelectOption", Locator: loc, Err: fmt.Errorf("no option with visible text %q", visibleText)}
	})
}

// DragSlider grabs the element matching loc and drags it by (dx, dy) pixels.
func (s *Session) DragSlider(loc Locator, dx, dy int) error {
	return s.capture("DragSlider", func() error {
		elem, err := s.waitFor(loc, CondClickable)
		if err != nil {
			return err
		}
		if err := elem.MoveTo(0, 0); err != nil {
			return &ActionError{Op: "DragSlider", Locator: loc, Err: err}
		}
		if err := s.driver.ButtonDown(); err != nil {
			return &ActionError{Op: "DragSlider", Locator: loc, Err: err}
		}
		if err := elem.MoveTo(dx, dy); err != nil {
			// Release the button even when the move fails, or the browser is
			// left mid-drag.
			_ = s.driver.ButtonUp()
			return &ActionError{Op: "DragSlider", Locator: loc, Err: err}
		}
		if err := s.driver.ButtonUp(); err != nil {
			return &ActionError{Op: "DragSlider", Locator: loc, Err: err}
		}
		s.logger.Debug("Dragged slider.", zap.String("locator", loc.String()), zap.Int("dx", dx), zap.Int("dy", dy))
		return nil
	})
}

// ShadowElement looks up an element inside the shadow root hosted by the first
// element with the given tag name. Shadow subtrees are invisible to the native
// lookup strategies, so resolution goes through script evaluation.
func (s *Session) ShadowElement(hostTag, cssSelector string) (selenium.WebElement, error) {
	var elem selenium.WebElement
	err := s.capture("ShadowElement", func() error {
		host, err := s.waitFor(Tag(hostTag), CondPresent)
		if err != nil {
			return err
		}

		loc := Locator{Type: ByShadow, Value: fmt.Sprintf("%s::%s", hostTag, cssSelector)}
		timeout := s.cfg.Wait.Timeout
		var raw []byte
		found := func(wd selenium.WebDriver) (bool, error) {
			data, err := wd.ExecuteScriptRaw(
				"return arguments[0].shadowRoot ? arguments[0].shadowRoot.querySelector(arguments[1]) : null;",
				[]interface{}{host, cssSelector},
			)
			if err != nil {
				return false, nil
			}
			// The raw body is the full response envelope, not the bare script
			// result. A query with no match carries a null value.
			var reply struct {
				Value json.RawMessage `json:"value"`
			}
			if err := json.Unmarshal(data, &reply); err != nil {
				return false, nil
			}
			if len(reply.Value) == 0 || string(reply.Value) == "null" {
				return false, nil
			}
			raw = data
			return true, nil
		}
		if err := s.driver.WaitWithTimeoutAndInterval(found, timeout, s.cfg.Wait.PollInterval); err != nil {
			return &ElementTimeoutError{Locator: loc, Condition: CondPresent.String(), Timeout: timeout, Err: err}
		}

		elem, err = s.driver.DecodeElement(raw)
		if err != nil {
			return &ActionError{Op: "ShadowElement", Locator: loc, Err: err}
		}
		return nil
	})
	return elem, err
}

// CanvasPNG captures the rendered content of the canvas matching loc as PNG bytes.
func (s *Session) CanvasPNG(loc Locator) ([]byte, error) {
	var png []byte
	err := s.capture("CanvasPNG", func() error {
		elem, err := s.waitFor(loc, CondVisible)
		if err != nil {
			return err
		}
		res, err := s.driver.ExecuteScript(
			"return arguments[0].toDataURL('image/png');",
			[]interface{}{elem},
		)
		if err != nil {
			return &ActionError{Op: "CanvasPNG", Locator: loc, Err: err}
		}
		dataURL, ok := res.(string)
		if !ok {
			return &ActionError{Op: "CanvasPNG", Locator: loc, Err: fmt.Errorf("unexpected script result type %T", res)}
		}
		const prefix = "data:image/png;base64,"
		if !strings.HasPrefix(dataURL, prefix) {
			return &ActionError{Op: "CanvasPNG", Locator: loc, Err: fmt.Errorf("unexpected data URL prefix in %.40q", dataURL)}
		}
		png, err = base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
		if err != nil {
			return &ActionError{Op: "CanvasPNG", Locator: loc, Err: err}
		}
		s.logger.Debug("Decoded canvas image.", zap.String("locator", loc.String()), zap.Int("bytes", len(png)))
		return nil
	})
	return png, err
}
