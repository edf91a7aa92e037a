// File: internal/webdriver/locator.go
package webdriver

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// Locator identifies a page element as a (type, value) pair. Locators are
// stateless and constructed per call; they are never retained by the Session.
type Locator struct {
	Type  string
	Value string
}

// Locator types accepted by the facade.
const (
	ByID    = "id"
	ByXPath = "xpath"
	ByClass = "class"
	ByCSS   = "css"
	ByTag   = "tag"
	// ByShadow marks an element inside a shadow root. It has no native driver
	// strategy and is only legal on the dedicated ShadowElement lookup path.
	ByShadow = "shadow"
)

// ID, XPath, Class, CSS and Tag are convenience constructors.
func ID(value string) Locator    { return Locator{Type: ByID, Value: value} }
func XPath(value string) Locator { return Locator{Type: ByXPath, Value: value} }
func Class(value string) Locator { return Locator{Type: ByClass, Value: value} }
func CSS(value string) Locator   { return Locator{Type: ByCSS, Value: value} }
func Tag(value string) Locator   { return Locator{Type: ByTag, Value: value} }

// strategies maps facade locator types to the driver's native lookup strategies.
var strategies = map[string]string{
	ByID:    selenium.ByID,
	ByXPath: selenium.ByXPATH,
	ByClass: selenium.ByClassName,
	ByCSS:   selenium.ByCSSSelector,
	ByTag:   selenium.ByTagName,
}

// strategy resolves the locator type to the driver's native strategy constant.
// The locator value passes through untouched.
func (l Locator) strategy() (string, error) {
	by, ok := strategies[l.Type]
	if !ok {
		return "", &InvalidLocatorError{Type: l.Type}
	}
	return by, nil
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Type, l.Value)
}
