package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	AppName    = "Ripple"
	AppVersion = "1.0.0"
)

// BrowserUserAgent is sent on outbound feed fetches. Several podcast hosts
// serve different (or no) XML to clients that do not look like a browser.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Config struct {
	Addr     string
	DBPath   string
	DataDir  string
	LogLevel string
	ProxyURL string
	NodeID   int64
}

func Load() Config {
	addr := os.Getenv("RIPPLE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("RIPPLE_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	path := os.Getenv("RIPPLE_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "ripple.db")
	}
	logLevel := os.Getenv("RIPPLE_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	nodeID := int64(1)
	if raw := os.Getenv("RIPPLE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}

	return Config{
		Addr:     addr,
		DBPath:   filepath.Clean(path),
		DataDir:  filepath.Clean(dataDir),
		LogLevel: logLevel,
		ProxyURL: os.Getenv("RIPPLE_PROXY_URL"),
		NodeID:   nodeID,
	}
}
