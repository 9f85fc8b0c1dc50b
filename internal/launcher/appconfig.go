// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const defaultStreamlitPort = 8501

// streamlitConfig mirrors the subset of .streamlit/config.toml the
// launcher cares about for reporting where the app will serve.
type streamlitConfig struct {
	Server struct {
		Address string `toml:"address"`
		Port    int    `toml:"port"`
	} `toml:"server"`
}

// ServerURL derives the local URL a Streamlit app will serve on by
// reading the app's .streamlit/config.toml. Missing file or fields fall
// back to Streamlit's defaults. The second return is false when the
// config file exists but cannot be parsed.
func ServerURL(workDir string) (string, bool) {
	cfg := streamlitConfig{}
	cfg.Server.Address = "localhost"
	cfg.Server.Port = defaultStreamlitPort

	data, err := os.ReadFile(filepath.Join(workDir, ".streamlit", "config.toml"))
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return "", false
		}
	}

	if cfg.Server.Address == "" || cfg.Server.Address == "0.0.0.0" {
		cfg.Server.Address = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultStreamlitPort
	}
	return fmt.Sprintf("http://%s:%d", cfg.Server.Address, cfg.Server.Port), true
}
