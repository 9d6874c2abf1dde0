package render

import "errors"

// Sentinel errors for rendering.
var (
	ErrBrowserNotFound = errors.New("browser executable not found")
	ErrBrowserConnect  = errors.New("failed to launch browser")
	ErrCapture         = errors.New("failed to capture screenshot")
	ErrDecode          = errors.New("failed to decode image")
	ErrEncode          = errors.New("failed to encode image")
	ErrNoTable         = errors.New("no table found in html")
	ErrFont            = errors.New("failed to load font")
	ErrEmptyFormula    = errors.New("formula is empty")
)
