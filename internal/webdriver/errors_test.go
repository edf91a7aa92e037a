// File: internal/webdriver/errors_test.go
package webdriver

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := fmt.Errorf("connection refused")

	launch := &LaunchError{Browser: "chrome", Err: cause}
	assert.Equal(t, "failed to launch chrome session: connection refused", launch.Error())

	invalid := &InvalidLocatorError{Type: "link_text"}
	assert.Equal(t, `unrecognized locator type "link_text"`, invalid.Error())

	timeout := &ElementTimeoutError{Locator: ID("submit"), Condition: "clickable", Timeout: 10 * time.Second}
	assert.Equal(t, `element id="submit" did not become clickable within 10s`, timeout.Error())

	action := &ActionError{Op: "Click", Locator: ID("submit"), Err: cause}
	assert.Equal(t, `Click failed for element id="submit": connection refused`, action.Error())

	noLocator := &ActionError{Op: "TypeKeys", Err: cause}
	assert.Equal(t, "TypeKeys failed: connection refused", noLocator.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")

	assert.True(t, errors.Is(&LaunchError{Browser: "firefox", Err: cause}, cause))
	assert.True(t, errors.Is(&ElementTimeoutError{Err: cause}, cause))
	assert.True(t, errors.Is(&ActionError{Op: "Click", Err: cause}, cause))
}
