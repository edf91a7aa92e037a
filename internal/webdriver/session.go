// File: internal/webdriver/session.go
package webdriver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"

	"github.com/cbaxter13/webpilot/internal/config"
)

// stopFunc tears down whatever the launcher started alongside the driver session.
type stopFunc func() error

// launcher abstracts driver-service startup and WebDriver session creation so
// tests can substitute a fake driver.
type launcher interface {
	Launch(cfg config.DriverConfig, logger *zap.Logger) (selenium.WebDriver, stopFunc, error)
}

// Client owns the session lifecycle: it launches the browser on Open, tears it
// down on Close, and carries the settings every dispatched operation reads
// (wait bounds, error-screenshot directory).
type Client struct {
	cfg    *config.Config
	logger *zap.Logger
	launch launcher

	mu            sync.Mutex
	session       *Session
	opening       bool
	screenshotDir string
}

// New creates a Client. No browser is started until Open is called.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:           cfg,
		logger:        logger.Named("webdriver"),
		launch:        &seleniumLauncher{},
		screenshotDir: cfg.Screenshot.ErrorDir,
	}
}

// SetErrorScreenshotDir changes where failure screenshots are written. The
// directory is created if it does not exist.
func (c *Client) SetErrorScreenshotDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("screenshot directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create screenshot directory %s: %w", dir, err)
	}
	c.mu.Lock()
	c.screenshotDir = dir
	c.mu.Unlock()
	c.logger.Info("Error screenshot directory set.", zap.String("dir", dir))
	return nil
}

func (c *Client) errorScreenshotDir() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screenshotDir
}

// Open launches the browser and navigates to url. Opening a second session on
// an already-open Client is a caller error.
func (c *Client) Open(url string) (*Session, error) {
	// The opening flag reserves the slot for the whole launch, so a racing
	// Open cannot slip past the guard while the browser is still starting.
	c.mu.Lock()
	if c.session != nil || c.opening {
		c.mu.Unlock()
		return nil, fmt.Errorf("session already open; close it before opening another")
	}
	c.opening = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.opening = false
		c.mu.Unlock()
	}()

	driver, stop, err := c.launch.Launch(c.cfg.Driver, c.logger)
	if err != nil {
		return nil, &LaunchError{Browser: c.cfg.Driver.Browser, Err: err}
	}

	s := &Session{
		id:     uuid.New().String(),
		driver: driver,
		stop:   stop,
		cfg:    c.cfg,
		client: c,
	}
	s.logger = c.logger.With(zap.String("session_id", s.id))

	if err := driver.Get(url); err != nil {
		s.teardown()
		return nil, &LaunchError{Browser: c.cfg.Driver.Browser, Err: fmt.Errorf("initial navigation to %s failed: %w", url, err)}
	}
	if err := driver.MaximizeWindow(""); err != nil {
		s.logger.Debug("Could not maximize window.", zap.Error(err))
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	s.logger.Info("Browser session opened.", zap.String("url", url))
	return s, nil
}

// WithSession opens a session, runs fn, and guarantees teardown on every exit
// path, including a panic inside fn.
func (c *Client) WithSession(url string, fn func(*Session) error) error {
	s, err := c.Open(url)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			c.logger.Warn("Session close failed.", zap.Error(cerr))
		}
	}()
	return fn(s)
}

// Session is a live browser-driver handle. It is valid only between Open and
// Close; it is not safe for concurrent use.
type Session struct {
	id     string
	driver selenium.WebDriver
	stop   stopFunc
	cfg    *config.Config
	logger *zap.Logger
	client *Client

	mu     sync.Mutex
	closed bool
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string { return s.id }

// Driver exposes the underlying WebDriver for calls the facade does not wrap.
func (s *Session) Driver() selenium.WebDriver { return s.driver }

// Close quits the browser and stops the driver service. It is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	err := s.teardown()

	if s.client != nil {
		s.client.mu.Lock()
		if s.client.session == s {
			s.client.session = nil
		}
		s.client.mu.Unlock()
	}
	return err
}

func (s *Session) teardown() error {
	var errs []string
	if err := s.driver.Quit(); err != nil {
		errs = append(errs, fmt.Sprintf("quit driver: %v", err))
	}
	if s.stop != nil {
		if err := s.stop(); err != nil {
			errs = append(errs, fmt.Sprintf("stop service: %v", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("session teardown: %s", strings.Join(errs, "; "))
	}
	return nil
}

// capture is the uniform failure adapter every public operation runs through:
// it executes fn and, when fn fails, dumps a best-effort screenshot before
// returning the original error unchanged.
func (s *Session) capture(op string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	s.saveFailureScreenshot(op)
	s.logger.Warn("Operation failed.", zap.String("op", op), zap.Error(err))
	return err
}

// saveFailureScreenshot writes a full-page screenshot named by timestamp and
// operation. A failure here is logged and suppressed so it can never mask the
// error that triggered it.
func (s *Session) saveFailureScreenshot(op string) {
	dir := s.client.errorScreenshotDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("Could not create screenshot directory.", zap.String("dir", dir), zap.Error(err))
		return
	}

	if url, err := s.driver.CurrentURL(); err == nil {
		s.logger.Info("URL of the failed step.", zap.String("url", url))
	}

	png, err := s.driver.Screenshot()
	if err != nil {
		s.logger.Warn("Screenshot capture failed.", zap.Error(err))
		return
	}

	name := fmt.Sprintf("%s_%s.png", time.Now().Format("2006-01-02_15-04-05.000"), op)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		s.logger.Warn("Could not write screenshot file.", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info("Screenshot of failed step saved.", zap.String("path", path))
}

// seleniumLauncher starts a local driver service (when a binary path is
// configured) and opens a WebDriver session against it.
type seleniumLauncher struct{}

func (seleniumLauncher) Launch(cfg config.DriverConfig, logger *zap.Logger) (selenium.WebDriver, stopFunc, error) {
	var (
		service *selenium.Service
		addr    = cfg.URL
		err     error
	)

	if cfg.Path != "" {
		if v, verr := DriverVersion(cfg.Path); verr == nil {
			logger.Info("Driver binary resolved.", zap.String("path", cfg.Path), zap.String("version", v.String()))
		} else {
			logger.Debug("Could not probe driver version.", zap.String("path", cfg.Path), zap.Error(verr))
		}

		switch cfg.Browser {
		case "firefox":
			service, err = selenium.NewGeckoDriverService(cfg.Path, cfg.Port)
		default:
			service, err = selenium.NewChromeDriverService(cfg.Path, cfg.Port)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("could not start driver service: %w", err)
		}
		addr = fmt.Sprintf("http://localhost:%d/wd/hub", cfg.Port)
	}

	caps := selenium.Capabilities{"browserName": cfg.Browser}
	if cfg.Browser == "chrome" {
		args := append([]string(nil), cfg.Args...)
		if cfg.Headless {
			args = append(args, "--headless=new")
		}
		caps.AddChrome(chrome.Capabilities{Args: args})
	}

	driver, err := selenium.NewRemote(caps, addr)
	if err != nil {
		if service != nil {
			service.Stop()
		}
		return nil, nil, fmt.Errorf("could not create remote session: %w", err)
	}

	stop := func() error {
		if service != nil {
			return service.Stop()
		}
		return nil
	}
	return driver, stop, nil
}
