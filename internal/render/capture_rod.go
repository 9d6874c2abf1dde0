package render

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/process"
)

// RodCapturer captures screenshots with a headless Chromium driven by go-rod.
// The browser is launched lazily on the first capture and reused afterwards.
type RodCapturer struct {
	bin      string
	timeout  time.Duration
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodCapturer creates a capturer for the browser at bin.
func NewRodCapturer(bin string, timeout time.Duration) *RodCapturer {
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}
	return &RodCapturer{bin: bin, timeout: timeout}
}

func (r *RodCapturer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New().
		Bin(r.bin).
		Headless(true).
		Set("hide-scrollbars").
		Set("disable-gpu")

	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Capture implements Capturer.
func (r *RodCapturer) Capture(ctx context.Context, htmlPath string, width, height int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	url, err := fileutil.FileURL(htmlPath)
	if err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("setting viewport: %w", err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}

	return page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// Close shuts the browser down and kills any leftover helper processes.
func (r *RodCapturer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.kill()
	return err
}

func (r *RodCapturer) kill() {
	if r.launcher == nil {
		return
	}
	process.KillProcessGroup(r.launcher.PID())
	r.launcher.Cleanup()
	r.launcher = nil
}

var _ Capturer = (*RodCapturer)(nil)
