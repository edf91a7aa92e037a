// File: internal/webdriver/fake_driver_test.go
package webdriver

import (
	"fmt"
	"testing"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"github.com/cbaxter13/webpilot/internal/config"
)

// fakeDriver is an in-memory stand-in for a live WebDriver session. It embeds
// the interface so only the methods the facade exercises need real bodies;
// anything else panics loudly if a test wanders into it.
type fakeDriver struct {
	selenium.WebDriver

	elements map[string]*fakeElement

	findCalls   int
	gotoURLs    []string
	quitCalls   int
	typedKeys   []string
	mouseClicks int
	buttonDowns int
	buttonUps   int

	currentURL    string
	screenshotErr error
	navigateErr   error

	lastScript     string
	lastScriptArgs []interface{}
	scriptFn       func(script string, args []interface{}) (interface{}, error)
	scriptRawFn    func(script string, args []interface{}) ([]byte, error)
	decodeFn       func(data []byte) (selenium.WebElement, error)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements:   make(map[string]*fakeElement),
		currentURL: "http://stub.local/page",
	}
}

func elementKey(by, value string) string { return by + "\x00" + value }

// add registers an element under a native strategy + value pair.
func (d *fakeDriver) add(by, value string, elem *fakeElement) {
	d.elements[elementKey(by, value)] = elem
}

func (d *fakeDriver) Get(url string) error {
	if d.navigateErr != nil {
		return d.navigateErr
	}
	d.gotoURLs = append(d.gotoURLs, url)
	d.currentURL = url
	return nil
}

func (d *fakeDriver) Quit() error {
	d.quitCalls++
	return nil
}

func (d *fakeDriver) MaximizeWindow(name string) error { return nil }

func (d *fakeDriver) CurrentURL() (string, error) { return d.currentURL, nil }

func (d *fakeDriver) Screenshot() ([]byte, error) {
	if d.screenshotErr != nil {
		return nil, d.screenshotErr
	}
	return []byte("fake-png-bytes"), nil
}

func (d *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	d.findCalls++
	elem, ok := d.elements[elementKey(by, value)]
	if !ok || !elem.attached() {
		return nil, fmt.Errorf("no such element: %s=%s", by, value)
	}
	return elem, nil
}

func (d *fakeDriver) KeyDown(keys string) error {
	d.typedKeys = append(d.typedKeys, keys)
	return nil
}

// KeyUp mirrors the library, where it posts the exact same request as KeyDown.
func (d *fakeDriver) KeyUp(keys string) error { return d.KeyDown(keys) }

func (d *fakeDriver) Click(button int) error {
	d.mouseClicks++
	return nil
}

func (d *fakeDriver) ButtonDown() error {
	d.buttonDowns++
	return nil
}

func (d *fakeDriver) ButtonUp() error {
	d.buttonUps++
	return nil
}

func (d *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.lastScript = script
	d.lastScriptArgs = args
	if d.scriptFn != nil {
		return d.scriptFn(script, args)
	}
	return nil, nil
}

// ExecuteScriptRaw answers with the full response envelope, as the real driver
// does; the default is a null script result.
func (d *fakeDriver) ExecuteScriptRaw(script string, args []interface{}) ([]byte, error) {
	d.lastScript = script
	d.lastScriptArgs = args
	if d.scriptRawFn != nil {
		return d.scriptRawFn(script, args)
	}
	return []byte(`{"sessionId":"stub","status":0,"value":null}`), nil
}

func (d *fakeDriver) DecodeElement(data []byte) (selenium.WebElement, error) {
	if d.decodeFn != nil {
		return d.decodeFn(data)
	}
	return nil, fmt.Errorf("no decode function configured")
}

// WaitWithTimeoutAndInterval mirrors the real driver's polling loop.
func (d *fakeDriver) WaitWithTimeoutAndInterval(condition selenium.Condition, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := condition(d)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout after %v", timeout)
		}
		time.Sleep(interval)
	}
}

func (d *fakeDriver) WaitWithTimeout(condition selenium.Condition, timeout time.Duration) error {
	return d.WaitWithTimeoutAndInterval(condition, timeout, 10*time.Millisecond)
}

func (d *fakeDriver) Wait(condition selenium.Condition) error {
	return d.WaitWithTimeout(condition, time.Second)
}

// fakeElement is a scriptable page element.
type fakeElement struct {
	selenium.WebElement

	tag       string
	text      string
	attrs     map[string]string
	displayed bool
	enabled   bool
	selected  bool

	// detachedUntil simulates an element that enters the DOM later.
	detachedUntil time.Time

	clicks   int
	sentKeys []string
	clears   int
	moves    []point
	children []*fakeElement

	onClick func()
}

type point struct{ x, y int }

func newFakeElement() *fakeElement {
	return &fakeElement{
		attrs:     make(map[string]string),
		displayed: true,
		enabled:   true,
	}
}

func (e *fakeElement) attached() bool {
	return e.detachedUntil.IsZero() || time.Now().After(e.detachedUntil)
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SendKeys(keys string) error {
	e.sentKeys = append(e.sentKeys, keys)
	return nil
}

func (e *fakeElement) Clear() error {
	e.clears++
	return nil
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) TagName() (string, error) { return e.tag, nil }

func (e *fakeElement) IsSelected() (bool, error) { return e.selected, nil }

func (e *fakeElement) IsEnabled() (bool, error) { return e.enabled, nil }

func (e *fakeElement) IsDisplayed() (bool, error) { return e.displayed, nil }

func (e *fakeElement) GetAttribute(name string) (string, error) {
	if v, ok := e.attrs[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("no attribute %q", name)
}

func (e *fakeElement) MoveTo(xOffset, yOffset int) error {
	e.moves = append(e.moves, point{xOffset, yOffset})
	return nil
}

func (e *fakeElement) FindElements(by, value string) ([]selenium.WebElement, error) {
	var out []selenium.WebElement
	for _, child := range e.children {
		out = append(out, child)
	}
	return out, nil
}

// fakeLauncher hands a prepared fake driver to the Client.
type fakeLauncher struct {
	driver    selenium.WebDriver
	launchErr error
	stops     int
}

func (f *fakeLauncher) Launch(cfg config.DriverConfig, logger *zap.Logger) (selenium.WebDriver, stopFunc, error) {
	if f.launchErr != nil {
		return nil, nil, f.launchErr
	}
	return f.driver, func() error {
		f.stops++
		return nil
	}, nil
}

// testConfig returns a config with short waits so timeout tests stay fast.
func testConfig(t *testing.T) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Wait.Timeout = 200 * time.Millisecond
	cfg.Wait.PollInterval = 10 * time.Millisecond
	cfg.Wait.KeyDelay = 0
	cfg.Screenshot.ErrorDir = t.TempDir()
	return cfg
}

// newTestSession wires a Client to a fake driver and opens a session.
func newTestSession(t *testing.T) (*Client, *Session, *fakeDriver) {
	t.Helper()
	driver := newFakeDriver()
	client := New(testConfig(t), zap.NewNop())
	client.launch = &fakeLauncher{driver: driver}

	sess, err := client.Open("http://stub.local/page")
	if err != nil {
		t.Fatalf("opening test session: %v", err)
	}
	return client, sess, driver
}
