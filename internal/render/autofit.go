package render

import (
	"image"
	"image/draw"
)

// blankRun is the number of trailing white columns/rows that means "no content there".
const blankRun = 30

// maxCropFraction bounds left/right cropping when limit cropping is on.
const maxCropFraction = 0.22

func isWhite(img image.Image, x, y int) bool {
	r, g, b, a := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}

// whiteProfile reports, per column and per row, whether every pixel is white.
func whiteProfile(img image.Image) (cols, rows []bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cols = make([]bool, w)
	rows = make([]bool, h)
	for i := range cols {
		cols[i] = true
	}
	for i := range rows {
		rows[i] = true
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isWhite(img, bounds.Min.X+x, bounds.Min.Y+y) {
				cols[x] = false
				rows[y] = false
			}
		}
	}
	return cols, rows
}

// trailingBlank reports whether the last blankRun entries are all white.
// A profile shorter than blankRun never counts as blank.
func trailingBlank(profile []bool) bool {
	if len(profile) < blankRun {
		return false
	}
	for _, white := range profile[len(profile)-blankRun:] {
		if !white {
			return false
		}
	}
	return true
}

// cropSpan returns [start, end) of the content along one axis.
//
// start is the first index where whiteness flips, end is one past the index
// after the last flip, so one blank pixel is kept on each side. Content that
// touches an edge keeps that edge. No flip at all means the full extent.
func cropSpan(profile []bool) (start, end int) {
	n := len(profile)
	first, last := -1, -1
	for i := 0; i+1 < n; i++ {
		if profile[i] != profile[i+1] {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0, n
	}

	start, end = first, last+2
	if !profile[0] {
		start = 0
	}
	if !profile[n-1] {
		end = n
	}
	return start, end
}

// cropBounds computes the crop rectangle for img.
func cropBounds(img image.Image, limit bool) image.Rectangle {
	cols, rows := whiteProfile(img)
	left, right := cropSpan(cols)
	top, bottom := cropSpan(rows)

	if limit {
		w := len(cols)
		maxCrop := int(float64(w) * maxCropFraction)
		left = min(left, maxCrop)
		right = max(right, w-maxCrop)
	}

	b := img.Bounds()
	return image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+right, b.Min.Y+bottom)
}

// cropImage copies rect out of img into a new RGBA anchored at the origin.
func cropImage(img image.Image, rect image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}
