package gitengine

import "errors"

var (
	errAborted       = errors.New("gitengine: run aborted by operator")
	errMergeConflict = errors.New("gitengine: working tree still dirty after checkout")
)
