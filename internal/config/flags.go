package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

type flagValues struct {
	configFile     string
	listenAddr     string
	dbPath         string
	apiURL         string
	requestTimeout time.Duration
	timezone       string
	logLevel       string
	logFormat      string
	logFile        string
	stateFile      string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVarP(&v.configFile, "config", "c", "", "config file (.toml, .json or .jsonc)")
	fs.StringVar(&v.listenAddr, "listen", DefaultListenAddr, "server listen address")
	fs.StringVar(&v.dbPath, "db", "", "SQLite database path")
	fs.StringVar(&v.apiURL, "api-url", DefaultAPIURL, "API base URL for the client")
	fs.DurationVar(&v.requestTimeout, "timeout", DefaultRequestTimeout, "client request timeout")
	fs.StringVar(&v.timezone, "timezone", DefaultTimezone, "time zone used for \"today\"")
	fs.StringVar(&v.logLevel, "log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&v.logFormat, "log-format", DefaultLogFormat, "log format (text, json, logfmt)")
	fs.StringVar(&v.logFile, "log-file", "", "write logs to this file")
	fs.StringVar(&v.stateFile, "state-file", "", "client state file")
	return v
}

// apply copies only the flags set on the command line, so defaults never
// override file or environment values.
func (v *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	if fs.Changed("listen") {
		cfg.ListenAddr = v.listenAddr
	}
	if fs.Changed("db") {
		cfg.DBPath = v.dbPath
	}
	if fs.Changed("api-url") {
		cfg.APIURL = v.apiURL
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeout = Duration(v.requestTimeout)
	}
	if fs.Changed("timezone") {
		cfg.Timezone = v.timezone
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = v.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = v.logFormat
	}
	if fs.Changed("log-file") {
		cfg.LogFile = v.logFile
	}
	if fs.Changed("state-file") {
		cfg.StateFile = v.stateFile
	}
}
