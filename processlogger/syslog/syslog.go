// Package syslog ships lines to a remote syslog server over udp, tcp or
// tcp with TLS. The connection details come from the default logger
// configuration. Tags and hostnames can be set per source.
package syslog

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
	syslogger "github.com/silverstagtech/srslog"
)

const (
	tlsConnection = "tcp+tls"
	tcpConnection = "tcp"
	udpConnection = "udp"
	// LoggerTag will be used to call this package
	LoggerTag       = "syslog"
	defaultProtocol = tlsConnection
)

var (
	validDialers = map[string]bool{
		tlsConnection: true,
		tcpConnection: true,
		udpConnection: true,
	}
)

func isValidDialer(s string) bool {
	_, ok := validDialers[s]
	return ok
}

func init() {
	processlogger.RegisterLogger(LoggerTag, func() processlogger.Logger {
		return New()
	})
}

// Syslog is responsible for logging to a syslog endpoint
type Syslog struct {
	tlsconfig       *tls.Config
	defaults        configfile.Syslog
	logwriter       *syslogger.Writer
	loggingFacility syslogger.Priority

	// basename is the containers hostname and can be appended to the hostname
	// or tag when sending the line.
	basename string
}

// New returns an unconnected Syslog logger.
func New() *Syslog {
	basename, err := os.Hostname()
	if err != nil {
		basename = "not_available"
	}
	return &Syslog{
		loggingFacility: syslogger.LOG_DAEMON,
		basename:        basename,
	}
}

func readCertificates(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("No certificate bundle specified")
	}
	certbundle, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	roots := x509.NewCertPool()
	if ok := roots.AppendCertsFromPEM(certbundle); !ok {
		return nil, fmt.Errorf("failed to parse the given certificate bundle")
	}

	return roots, nil
}

// RegisterConfig takes the connection details from the defaults.
// Per source settings travel with each line.
func (sl *Syslog) RegisterConfig(_ configfile.LoggingConfig, defaults configfile.DefaultLoggerDetails) error {
	if sl.logwriter != nil {
		return nil
	}
	sl.defaults = defaults.Config.Syslog

	if sl.defaults.ConnectionType == "" {
		sl.defaults.ConnectionType = defaultProtocol
	}
	if !isValidDialer(sl.defaults.ConnectionType) {
		return fmt.Errorf("%s is not a valid protocol to connect to syslog", sl.defaults.ConnectionType)
	}
	if sl.defaults.Address == "" {
		return fmt.Errorf("syslog engine requires an address in the default logger configuration")
	}

	if sl.defaults.ConnectionType == tlsConnection {
		roots, err := readCertificates(sl.defaults.CertificateBundlePath)
		if err != nil {
			return err
		}
		sl.tlsconfig = &tls.Config{
			RootCAs: roots,
		}
	}

	return nil
}

// Start connects the logging engine. Start is safe to be called multiple times.
func (sl *Syslog) Start() error {
	if sl.logwriter != nil {
		return nil
	}

	var writer *syslogger.Writer
	var err error
	switch sl.defaults.ConnectionType {
	case tlsConnection:
		writer, err = syslogger.DialWithTLSConfig(
			tlsConnection,
			sl.defaults.Address,
			syslogger.LOG_INFO|sl.loggingFacility,
			sl.defaults.ProgramName,
			sl.tlsconfig,
		)
	case tcpConnection, udpConnection:
		writer, err = syslogger.Dial(
			sl.defaults.ConnectionType,
			sl.defaults.Address,
			syslogger.LOG_INFO|sl.loggingFacility,
			sl.defaults.ProgramName,
		)
	default:
		err = fmt.Errorf("Invalid logger type detected")
	}

	if err != nil {
		return fmt.Errorf("failed to connect to Syslog server because: %s", err)
	}

	sl.logwriter = writer
	return nil
}

// tag picks the program name for a line. The source setting wins over the
// default, and the source name is used when neither is set.
func (sl *Syslog) tag(conf configfile.LoggingConfig) string {
	tag := conf.SourceName
	if conf.Syslog.ProgramName != "" {
		tag = conf.Syslog.ProgramName
	} else if sl.defaults.ProgramName != "" {
		tag = sl.defaults.ProgramName
	}

	if sl.defaults.AddContainerNameToTag || conf.Syslog.AddContainerNameToTag {
		tag = tag + sl.basename
	}
	return tag
}

func (sl *Syslog) hostname(conf configfile.LoggingConfig) string {
	hostname := sl.basename
	if conf.Syslog.OverrideHostname != "" {
		hostname = conf.Syslog.OverrideHostname
	} else if sl.defaults.OverrideHostname != "" {
		hostname = sl.defaults.OverrideHostname
	}

	if sl.defaults.AddContainerNameToHostname || conf.Syslog.AddContainerNameToHostname {
		hostname = hostname + sl.basename
	}
	return hostname
}

// priority is info for stdout lines and crit for stderr lines unless the
// level can be read from the line itself.
func priority(msg processlogger.LogMessage) syslogger.Priority {
	level := syslogger.LOG_INFO
	if msg.Pipe == processlogger.STDERR {
		level = syslogger.LOG_CRIT
	}

	if msg.Config.Syslog.ExtractLogLevel {
		if detected, err := extractLevel(msg.Message); err == nil {
			level = detected
		}
	}
	return level
}

// Submit will consume a processlogger.LogMessage and send it to the server.
func (sl *Syslog) Submit(msg processlogger.LogMessage) {
	if sl.logwriter == nil {
		return
	}
	_, err := sl.logwriter.WriteWithOverrides(
		sl.loggingFacility,
		priority(msg),
		sl.hostname(msg.Config),
		sl.tag(msg.Config),
		msg.Message,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "syslog: failed to send line from %s. Error: %s\n", msg.Source, err)
	}
}

// Shutdown will try to close the connection to the syslog server. This is a best effort close.
func (sl *Syslog) Shutdown() chan error {
	c := make(chan error, 1)
	go func() {
		defer close(c)
		// Nothing started, nothing to close.
		if sl.logwriter == nil {
			c <- nil
			return
		}
		if err := sl.logwriter.Close(); err != nil {
			c <- fmt.Errorf("failed to close syslog connection. Error: %s", err)
			return
		}
		c <- nil
	}()
	return c
}
