package compressor

import "strconv"

// OutputFlag precedes the destination path in the engine argument list.
const OutputFlag = "-o"

// BuildArgs maps a request onto the engine's argument list. The order is
// significant: the optimization level first, --unoptimize before any
// flag that changes the image, then lossy, colors and at most one resize
// flag (width over height over scale), then input, -o and output.
func BuildArgs(req Request, outputPath string) []string {
	args := []string{"-O" + strconv.Itoa(req.level())}

	if req.Unoptimize {
		args = append(args, "--unoptimize")
	}
	if req.Lossy != nil {
		args = append(args, "--lossy="+strconv.Itoa(*req.Lossy))
	}
	if req.Colors != nil {
		args = append(args, "--colors", strconv.Itoa(*req.Colors))
	}

	switch {
	case req.ResizeWidth != nil:
		args = append(args, "--resize-width", strconv.Itoa(*req.ResizeWidth))
	case req.ResizeHeight != nil:
		args = append(args, "--resize-height", strconv.Itoa(*req.ResizeHeight))
	case req.Scale != nil:
		args = append(args, "--scale", formatScale(*req.Scale))
	}

	return append(args, req.InputPath, OutputFlag, outputPath)
}
