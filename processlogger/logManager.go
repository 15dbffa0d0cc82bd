// Package processlogger is responsible for collecting lines that are submitted and
// forwarding them to the correct logging engines. The logging engines need to satisfy
// the Logger interface.
// Loggers handle themselves and processlogger forwards on the log messages that they
// need to send.
// processlogger will only start the logging engines that it requires although all
// logging engines are available.
package processlogger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/morfien101/splitstream/configfile"
)

// Pipe describes if the message came out of stdout or stderr
type Pipe string

const (
	// STDERR is used to indicate a message was from stderr
	STDERR = Pipe("e")
	// STDOUT is used to indicate a message was from stdout
	STDOUT = Pipe("o")
)

// ErrTerminated is returned for messages submitted after Shutdown.
var ErrTerminated = errors.New("log manager has been shut down")

// LogMessage is the box that needs to be created to ship a message to a
// log forwarder. Message holds one line without its separator.
type LogMessage struct {
	Source  string
	Pipe    Pipe
	Config  configfile.LoggingConfig
	Message string
}

var _ LogsManager = (*LogManager)(nil)

// LogManager is used to collect, route and submit logs to the correct logging engines.
type LogManager struct {
	sync.RWMutex
	queueSize        int
	workersList      []*logworker
	defaultConfig    configfile.DefaultLoggerDetails
	availableLoggers map[string]Logger
	activeLoggers    map[string]Logger
	activeLoggerQ    map[string]chan *LogMessage
	terminated       bool
}

// New will create a new LogManager. queueSize is how many lines may wait
// for each logging engine before Submit starts reporting backpressure.
func New(queueSize int, defaultConfig configfile.DefaultLoggerDetails) *LogManager {
	if queueSize < 1 {
		queueSize = 1
	}
	lm := &LogManager{
		queueSize:     queueSize,
		workersList:   make([]*logworker, 0),
		defaultConfig: defaultConfig,
		activeLoggers: make(map[string]Logger),
		activeLoggerQ: make(map[string]chan *LogMessage),
	}
	lm.loadAvailableLoggers()
	return lm
}

func (lm *LogManager) loadAvailableLoggers() {
	lm.availableLoggers = make(map[string]Logger)
	// Load all the available loggers here
	for name, regfunc := range registeredLoggers {
		lm.availableLoggers[name] = regfunc()
	}
}

// StartLoggers will start all of the loggers required by the sources and
// by the source manager itself.
func (lm *LogManager) StartLoggers(sources configfile.Sources, SMConf configfile.LoggingConfig) error {
	lm.Lock()
	defer lm.Unlock()

	// Start the logger to the source manager itself.
	// If we can't log ourselves then we need to error.
	if err := lm.startLogger(SMConf); err != nil {
		return err
	}

	for _, src := range sources {
		if err := lm.startLogger(src.LoggerConfig); err != nil {
			return err
		}
	}

	// Now that we have a list of the loggers that are going to be used.
	// We can start logger and start the router worker for the logger.
	for id, logger := range lm.activeLoggers {
		if _, routed := lm.activeLoggerQ[id]; routed {
			continue
		}
		err := logger.Start()
		if err != nil {
			return err
		}
		lm.startLogRouter(id, logger)
	}

	return nil
}

func (lm *LogManager) startLogRouter(id string, logger Logger) {
	c := make(chan *LogMessage, lm.queueSize)
	lm.activeLoggerQ[id] = c

	worker := newWorker(logger)
	lm.workersList = append(lm.workersList, worker)

	worker.wg.Add(1)
	go worker.route(c)
}

func (lm *LogManager) startLogger(conf configfile.LoggingConfig) error {
	if len(conf.Engine) == 0 {
		return fmt.Errorf("no logging engine configured for %s", conf.SourceName)
	}
	for _, engine := range conf.Engine {
		logger, ok := lm.availableLoggers[engine]
		if !ok {
			return fmt.Errorf("logging engine %s is not recognized. Please check your configuration file", engine)
		}

		// We register the configuration for the loggers here.
		// We need to tell the loggers to start later.
		if err := logger.RegisterConfig(conf, lm.defaultConfig); err != nil {
			return err
		}
		lm.activeLoggers[engine] = logger
	}
	return nil
}

// Submit pushes a message into the queue of every engine it is configured for.
// It waits for room rather than dropping the message. The bool is false when
// any of those queues is now full, telling the caller to ease off.
func (lm *LogManager) Submit(log LogMessage) (bool, error) {
	lm.RLock()
	defer lm.RUnlock()

	if lm.terminated {
		return false, ErrTerminated
	}

	// Every engine is checked first so a line is delivered to all or none.
	queues := make([]chan *LogMessage, 0, len(log.Config.Engine))
	for _, engine := range log.Config.Engine {
		q, ok := lm.activeLoggerQ[engine]
		if !ok {
			return false, fmt.Errorf("can't log to %s because it has not been started. Log is from: %s", engine, log.Source)
		}
		queues = append(queues, q)
	}

	keepGoing := true
	for _, q := range queues {
		msg := log
		q <- &msg
		if len(q) >= cap(q) {
			keepGoing = false
		}
	}
	return keepGoing, nil
}

// Shutdown is used to gracefully shutdown all the loggers and log routers.
// Queued messages are handed to their engines before the engines are shut down.
func (lm *LogManager) Shutdown() []error {
	lm.Lock()
	if lm.terminated {
		lm.Unlock()
		return nil
	}
	lm.terminated = true
	//close the channels for the loggers
	for _, ch := range lm.activeLoggerQ {
		close(ch)
	}
	lm.Unlock()

	// Collect the waitgroups. Wait for each one to
	// free up
	for _, worker := range lm.workersList {
		worker.waitGroup().Wait()
	}

	// Each logger needs to shutdown.
	// So we need to loop through all the active loggers and call the shutdown function.
	// Shutdown returns a channel that gets the error if there is one.
	outputs := make(map[string]error)
	mu := sync.Mutex{}
	wg := &sync.WaitGroup{}
	for id, logger := range lm.activeLoggers {
		innerID := id
		innerLogger := logger
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdownChan := innerLogger.Shutdown()
			if shutdownChan == nil {
				return
			}
			err, ok := <-shutdownChan
			if !ok || err == nil {
				return
			}
			mu.Lock()
			outputs[innerID] = err
			mu.Unlock()
		}()
	}
	// We can then wait for all of them to complete using the wait group.
	wg.Wait()
	// Then check to see if they returned any errors and pass that back to the caller.
	// We return a list of errors because we are responsible for closing multiple loggers.
	errList := make([]error, 0)
	for key, err := range outputs {
		errList = append(errList, fmt.Errorf("Logger %s got an error on shutdown call. Error: %s", key, err))
	}

	return errList
}

// The logworker is used to route logs into the logger that they want to use.
type logworker struct {
	myLogger Logger
	wg       *sync.WaitGroup
}

func newWorker(logger Logger) *logworker {
	return &logworker{
		myLogger: logger,
		wg:       &sync.WaitGroup{},
	}
}

// route is is the worker function. It will accept message as they come in on the input channel
// and call the Submit func for the logger that has been allocated to it.
func (lw *logworker) route(input chan *LogMessage) {
	defer lw.wg.Done()
	for log := range input {
		// The submit is a hand over to the logger. It is responsible for the
		// log from this point on.
		lw.myLogger.Submit(*log)
	}
}

// waitGroup gives the reference the sync wait group.
// This can be used to determine when this worker is finished.
// Its expected that the caller should also close the input channel to the worker
// to get the worker to free the wait group.
func (lw *logworker) waitGroup() *sync.WaitGroup {
	return lw.wg
}
