package constants

import "io/fs"

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// WorldAccessMask selects the world permission bits flagged by the file
	// permissions audit.
	WorldAccessMask fs.FileMode = 0o007
)
