package shell

import (
	"fmt"
	"os"
	"path/filepath"

	"src.fsl.sh/pkg/config"
)

// EnvConfig is the environment variable naming the configuration file when
// -config is not given.
const EnvConfig = "FSL_CONFIG"

// DefaultConfigName is the configuration file looked up in the working
// directory when neither -config nor $FSL_CONFIG is set.
const DefaultConfigName = "fsl.yaml"

// ConfigPath returns the path of the configuration file to use, or "" if
// there is none. The search order is the flag, $FSL_CONFIG, then fsl.yaml in
// the working directory.
func ConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("$%s file not found: %s", EnvConfig, p)
		}
		return p, nil
	}
	if info, err := os.Stat(DefaultConfigName); err == nil && !info.IsDir() {
		return DefaultConfigName, nil
	}
	return "", nil
}

func loadConfig(flag string) (*config.Config, error) {
	path, err := ConfigPath(flag)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default()
	}
	logger.Println("loading configuration from", path)
	return config.Load(path)
}

// HistoryPath returns the path of the REPL history file, ~/.fsl_history.
func HistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fsl_history"), nil
}
