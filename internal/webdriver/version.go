// File: internal/webdriver/version.go
package webdriver

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/blang/semver"
)

// DriverVersion probes a driver binary for its version by running it with
// --version and parsing the first semantic version in the output. Both
// chromedriver ("ChromeDriver 124.0.6367.91 (...)") and geckodriver
// ("geckodriver 0.34.0 (...)") follow this shape.
func DriverVersion(path string) (semver.Version, error) {
	out, err := exec.Command(path, "--version").CombinedOutput()
	if err != nil {
		return semver.Version{}, fmt.Errorf("could not run %s --version: %w", path, err)
	}
	return parseDriverVersion(string(out))
}

func parseDriverVersion(output string) (semver.Version, error) {
	for _, field := range strings.Fields(output) {
		if v, err := parseVersionToken(field); err == nil {
			return v, nil
		}
	}
	return semver.Version{}, fmt.Errorf("no version found in %q", strings.TrimSpace(output))
}

// parseVersionToken handles the four-segment versions chromedriver reports
// (124.0.6367.91) by truncating to the three semver cares about.
func parseVersionToken(token string) (semver.Version, error) {
	parts := strings.Split(token, ".")
	if len(parts) > 3 {
		token = strings.Join(parts[:3], ".")
	}
	return semver.Parse(token)
}
