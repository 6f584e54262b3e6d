package config

// AppName names the on-disk log file and default cache-dir segment.
const AppName = "photoframe"

// LogSubDir is the per-user log directory on POSIX platforms (rooted at
// the user's home directory).
const LogSubDir = ".cache/photoframe/log"

// LogWinSubDir is the per-user log directory on Windows (rooted at the
// user cache directory).
const LogWinSubDir = "photoframe\\log"

// LogExt is the log file's extension.
const LogExt = ".log"

// DefaultControlSocketName is used when control-socket-path is left to its
// platform-appropriate default.
const DefaultControlSocketName = "photoframe.sock"
