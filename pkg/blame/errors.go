package blame

import "errors"

var (
	ErrFileMismatch     = errors.New("blame requests belong to different files")
	ErrNotSupported     = errors.New("no supported version control found")
	ErrPluginDispense   = errors.New("failed to dispense blamer plugin")
	ErrUnexpectedPlugin = errors.New("plugin does not implement the blamer interface")
)
