package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the apexengineer directory layout.
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.apexengineer).
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.apexengineer/config.yaml).
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// LogDir returns the log directory (~/.apexengineer/logs).
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir(), "logs")
}

// SessionDir returns the session transcript directory
// (~/.apexengineer/sessions).
func (p *Paths) SessionDir() string {
	return filepath.Join(p.BaseDir(), "sessions")
}

// EnsureBaseDir creates the base directory if it doesn't exist.
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureLogDir creates the log directory if it doesn't exist.
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0755)
}

// EnsureSessionDir creates the session directory if it doesn't exist.
func (p *Paths) EnsureSessionDir() error {
	return os.MkdirAll(p.SessionDir(), 0755)
}

// LogPath returns a path within the log directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}

// SessionPath returns a path within the session directory.
func (p *Paths) SessionPath(name string) string {
	return filepath.Join(p.SessionDir(), name)
}
