package git

import "errors"

// Repository discovery errors
var (
	ErrSourceFolderNotSet = errors.New("source folder is not set")
	ErrNotRepository      = errors.New("source folder is not a git repository")
)

// Revision resolution errors
var (
	ErrHeadCommit   = errors.New("could not retrieve HEAD commit")
	ErrShallowClone = errors.New("repository is a shallow clone")
)
