package hints

// Notes:
// - Browser hint tests cannot run in parallel: they use t.Setenv and swap the
//   package-level IsInContainer.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("hint = %q, want hint prefix", hint)
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_AllSet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	if hint := ForBrowserConnect(); hint != "" {
		t.Errorf("hint = %q, want empty", hint)
	}
}

func TestForBrowserNotFound(t *testing.T) {
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserNotFound()
	if !strings.Contains(hint, "--chrome-path") || !strings.Contains(hint, "plot") {
		t.Errorf("hint = %q", hint)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timeout", ForTimeout(), "--timeout"},
		{"output", ForOutputDirectory(), "writable"},
		{"token", ForMissingToken("token", "MEDIUM_INTEGRATION_TOKEN", "~/x"), "MEDIUM_INTEGRATION_TOKEN"},
		{"license", ForLicense([]string{"cc-40-by", "public-domain"}), "cc-40-by, public-domain"},
		{"config", ForConfigNotFound([]string{"a.yaml", "/home/u/.config/go-nb2medium/a.yaml"}), "create /home/u/.config/go-nb2medium/a.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !strings.Contains(tt.got, tt.want) {
				t.Errorf("hint = %q, want substring %q", tt.got, tt.want)
			}
		})
	}
}

func TestForLicense_Empty(t *testing.T) {
	t.Parallel()

	if got := ForLicense(nil); got != "" {
		t.Errorf("ForLicense(nil) = %q", got)
	}
}
