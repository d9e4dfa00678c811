package external

import (
	"context"
	"strconv"
)

// VideoTrimmer cuts the segment [tIn, tOut] seconds of inPath into outPath.
type VideoTrimmer interface {
	Trim(ctx context.Context, inPath, outPath string, tIn, tOut float64) error
}

type scriptVideoTrimmer struct {
	runner Runner
}

// NewVideoTrimmer runs `<runner> <in> <out> <tIn> <tOut>`.
func NewVideoTrimmer(runner Runner) VideoTrimmer {
	return &scriptVideoTrimmer{runner: runner}
}

func (t *scriptVideoTrimmer) Trim(ctx context.Context, inPath, outPath string, tIn, tOut float64) error {
	_, err := t.runner.Run(ctx, nil, inPath, outPath,
		strconv.FormatFloat(tIn, 'f', -1, 64),
		strconv.FormatFloat(tOut, 'f', -1, 64))
	return err
}
