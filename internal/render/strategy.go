package render

import (
	"errors"
	"fmt"
	"slices"
)

// Table conversion strategies. "matplotlib" names the static plot renderer
// for users of the older command line.
const (
	ConversionChrome     = "chrome"
	ConversionPlot       = "plot"
	ConversionMatplotlib = "matplotlib"
)

// Conversions lists the accepted strategy names.
var Conversions = []string{ConversionChrome, ConversionPlot, ConversionMatplotlib}

// ErrInvalidConversion is returned for an unknown strategy name.
var ErrInvalidConversion = errors.New("invalid table conversion")

// ParseConversion validates name and folds aliases: the result is either
// ConversionChrome or ConversionPlot. An empty name selects the browser.
func ParseConversion(name string) (string, error) {
	switch {
	case name == "":
		return ConversionChrome, nil
	case name == ConversionMatplotlib:
		return ConversionPlot, nil
	case slices.Contains(Conversions, name):
		return name, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidConversion, name, Conversions)
}
