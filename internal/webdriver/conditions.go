// File: internal/webdriver/conditions.go
package webdriver

import (
	"github.com/tebeka/selenium"
)

// Condition is the single explicit predicate a dispatched operation waits for
// before acting. Exactly one condition applies per call; there is no flag set
// and therefore no precedence ambiguity.
type Condition int

const (
	// CondPresent holds when the element is attached to the DOM.
	CondPresent Condition = iota
	// CondVisible holds when the element is attached and displayed.
	CondVisible
	// CondClickable holds when the element is displayed and enabled.
	CondClickable
	// CondSelectable holds when the element is present and enabled.
	CondSelectable
)

func (c Condition) String() string {
	switch c {
	case CondPresent:
		return "present"
	case CondVisible:
		return "visible"
	case CondClickable:
		return "clickable"
	case CondSelectable:
		return "selectable"
	default:
		return "unknown"
	}
}

// check builds the driver-native polling predicate for this condition. Lookup
// misses report false rather than an error so the driver keeps polling until
// the deadline.
func (c Condition) check(by, value string) selenium.Condition {
	return func(wd selenium.WebDriver) (bool, error) {
		elem, err := wd.FindElement(by, value)
		if err != nil {
			return false, nil
		}
		switch c {
		case CondPresent:
			return true, nil
		case CondVisible:
			shown, err := elem.IsDisplayed()
			return err == nil && shown, nil
		case CondClickable:
			shown, err := elem.IsDisplayed()
			if err != nil || !shown {
				return false, nil
			}
			enabled, err := elem.IsEnabled()
			return err == nil && enabled, nil
		case CondSelectable:
			enabled, err := elem.IsEnabled()
			return err == nil && enabled, nil
		default:
			return false, nil
		}
	}
}

// goneCheck holds when the element is absent from the DOM or no longer displayed.
func goneCheck(by, value string) selenium.Condition {
	return func(wd selenium.WebDriver) (bool, error) {
		elem, err := wd.FindElement(by, value)
		if err != nil {
			return true, nil
		}
		shown, err := elem.IsDisplayed()
		if err != nil {
			return true, nil
		}
		return !shown, nil
	}
}
