// Package exifmeta reads GIF metadata through exiftool as a second opinion
// next to the engine's own --info report.
package exifmeta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/barasher/go-exiftool"
)

// Metadata is the subset of exiftool's GIF tags the CLI displays.
type Metadata struct {
	Width      int
	Height     int
	FrameCount int
	Duration   string
	Version    string
}

// Probe runs exiftool against path.
func Probe(path string) (Metadata, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return Metadata{}, fmt.Errorf("start exiftool: %w", err)
	}
	defer et.Close()

	files := et.ExtractMetadata(path)
	if len(files) == 0 {
		return Metadata{}, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	if files[0].Err != nil {
		return Metadata{}, fmt.Errorf("exiftool %s: %w", path, files[0].Err)
	}
	return fromFields(files[0].Fields), nil
}

// Rows returns label/value pairs for the populated fields.
func (m Metadata) Rows() [][2]string {
	var rows [][2]string
	if m.Width > 0 && m.Height > 0 {
		rows = append(rows, [2]string{"exiftool dimensions", fmt.Sprintf("%dx%d", m.Width, m.Height)})
	}
	if m.FrameCount > 0 {
		rows = append(rows, [2]string{"exiftool frames", strconv.Itoa(m.FrameCount)})
	}
	if m.Duration != "" {
		rows = append(rows, [2]string{"exiftool duration", m.Duration})
	}
	if m.Version != "" {
		rows = append(rows, [2]string{"GIF version", m.Version})
	}
	return rows
}

func fromFields(fields map[string]interface{}) Metadata {
	return Metadata{
		Width:      intField(fields, "ImageWidth"),
		Height:     intField(fields, "ImageHeight"),
		FrameCount: intField(fields, "FrameCount"),
		Duration:   stringField(fields, "Duration"),
		Version:    stringField(fields, "GIFVersion"),
	}
}

func intField(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
