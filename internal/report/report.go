// Package report extracts best-effort metadata from the engine's free-form
// --info output. Every field is optional: text that does not have the
// expected shape leaves the field nil instead of producing an error.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// FrameMarker prefixes every per-frame entry in the engine's info output.
const FrameMarker = "+ image #"

// Report holds the fields recovered from one diagnostic run.
type Report struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
	Frames *int `json:"frames,omitempty"`
	Colors *int `json:"colors,omitempty"`
}

// Parse extracts a Report from info text. It never fails.
func Parse(text string) Report {
	var r Report
	r.Width, r.Height = parseDimensions(text)
	r.Frames = countFrames(text)
	r.Colors = parseColors(text)
	return r
}

// Empty reports whether no field could be recovered.
func (r Report) Empty() bool {
	return r.Width == nil && r.Height == nil && r.Frames == nil && r.Colors == nil
}

// Dimensions renders "WxH", using "?" for unknown sides.
func (r Report) Dimensions() string {
	return fmt.Sprintf("%sx%s", intOrUnknown(r.Width), intOrUnknown(r.Height))
}

// FramesString renders the frame count or "?".
func (r Report) FramesString() string {
	return intOrUnknown(r.Frames)
}

// ColorsString renders the color count or "?".
func (r Report) ColorsString() string {
	return intOrUnknown(r.Colors)
}

func (r Report) String() string {
	return fmt.Sprintf("frames=%s dimensions=%s colors=%s", r.FramesString(), r.Dimensions(), r.ColorsString())
}

// parseDimensions looks at the first line only, for a "WxH" token after the
// first field.
func parseDimensions(text string) (*int, *int) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	first := lines[0]
	if !strings.Contains(first, "x") {
		return nil, nil
	}

	var width, height *int
	for i, field := range strings.Fields(first) {
		if i == 0 || !strings.Contains(field, "x") {
			continue
		}
		dims := strings.Split(strings.Trim(field, "[]()"), "x")
		if len(dims) != 2 {
			continue
		}
		w, errW := strconv.Atoi(dims[0])
		h, errH := strconv.Atoi(dims[1])
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			continue
		}
		width, height = &w, &h
	}
	return width, height
}

func countFrames(text string) *int {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	n := max(strings.Count(text, FrameMarker), 1)
	return &n
}

// parseColors takes the number immediately preceding a "color" token on any
// line mentioning "colors".
func parseColors(text string) *int {
	var colors *int
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if !strings.Contains(strings.ToLower(line), "colors") {
			continue
		}
		fields := strings.Fields(line)
		for i, field := range fields {
			if i == 0 || !strings.Contains(strings.ToLower(field), "color") {
				continue
			}
			if n, err := strconv.Atoi(fields[i-1]); err == nil {
				colors = &n
			}
		}
	}
	return colors
}

func intOrUnknown(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}
