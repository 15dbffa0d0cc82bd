package syslog

import (
	"encoding/json"
	"fmt"
	"strings"

	syslogger "github.com/silverstagtech/srslog"
)

var levels = map[string]syslogger.Priority{
	"emerg":   syslogger.LOG_EMERG,
	"alert":   syslogger.LOG_ALERT,
	"crit":    syslogger.LOG_CRIT,
	"err":     syslogger.LOG_ERR,
	"error":   syslogger.LOG_ERR,
	"warning": syslogger.LOG_WARNING,
	"warn":    syslogger.LOG_WARNING,
	"notice":  syslogger.LOG_NOTICE,
	"info":    syslogger.LOG_INFO,
	"debug":   syslogger.LOG_DEBUG,
}

type level struct {
	LVL string `json:"level"`
}

// extractLevel reads the level out of a line. JSON lines use their "level"
// key, plain lines may start with the level name, optionally in brackets
// or followed by a colon.
func extractLevel(line string) (syslogger.Priority, error) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		return extractJSONlevel([]byte(trimmed))
	}
	return extractTextLevel(trimmed)
}

func extractJSONlevel(jsonlog []byte) (syslogger.Priority, error) {
	lvl := &level{}
	err := json.Unmarshal(jsonlog, lvl)
	if err != nil {
		return syslogger.LOG_INFO, fmt.Errorf("Failed to read json log. Error: %s", err)
	}
	if lvl.LVL == "" {
		return syslogger.LOG_INFO, fmt.Errorf("Failed to detect level in json log")
	}

	return detectLevel(strings.ToLower(lvl.LVL)), nil
}

func extractTextLevel(line string) (syslogger.Priority, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return syslogger.LOG_INFO, fmt.Errorf("Failed to detect level in empty line")
	}
	word := strings.ToLower(strings.Trim(fields[0], "[]:"))
	if lvl, ok := levels[word]; ok {
		return lvl, nil
	}
	return syslogger.LOG_INFO, fmt.Errorf("Failed to detect level in line")
}

func detectLevel(level string) syslogger.Priority {
	if lvl, ok := levels[level]; ok {
		return lvl
	}
	return syslogger.LOG_INFO
}
