package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// configuration :
// Provides a way to configure the way logs are displayed both in
// terms of level and in terms of presentation. The logger uses a
// display to the standard output as a logging strategy with some
// coloring based on the severity of the logs to display. Values
// are retrieved from the configuration file provided at startup.
//
// The `AppName` describes a string for the name of the application
// using the logger.
// The default value is "nexora".
//
// The `Level` is a string representing the minimum level of a log
// message in order for it to be displayed. Basically it allows to
// filter debug messages from production environment so that more
// important messages get their deserved visibility.
// The default value is "info".
//
// The `Buffer` allows to specify the size of the buffer holding
// the log messages. The logger does not directly output messages
// to the standard output but stores them in an internal channel
// with a predefined size so that bursts of messages can be
// absorbed without blocking the producers.
// The default value is 500.
type configuration struct {
	AppName string
	Level   string
	Buffer  int
}

// traceMessage :
// Describes a message to be enqueued by the logger. It contains
// all the needed information to be displayed by the logger such
// as its severity, the module producing it and its content.
//
// The `level` value represents the actual importance of the log
// message.
//
// The `module` defines a string identifying the component that
// produced the message. It helps grouping related logs.
//
// The `content` represents the content of the message and is
// dumped as is during the logging process.
type traceMessage struct {
	level   Severity
	module  string
	content string
}

// StdLogger :
// Describes the logger structure used to perform logging to the
// standard output. Messages received through the `Trace` method
// are placed in an internal buffer and consumed by a dedicated
// routine so that producers are not blocked by the underlying
// display system as long as the buffer is not full.
//
// The `config` holds the settings parsed from the configuration
// file upon creating the logger.
//
// The `level` defines the minimum severity for a message to be
// displayed. Messages below this level are discarded.
//
// The `logChannel` is used to receive the trace messages from
// the various modules before sending them to the logging device.
//
// The `endChannel` allows to terminate the active loop which
// transmits log messages from the `logChannel` to the logging
// device.
//
// The `closed` value indicates whether the logger has been
// terminated or not. It is protected by the `locker` attribute
// and is mostly used to ensure that the logger always displays
// the messages posted up until the `Release` method is called.
//
// The `locker` allows to protect the `closed` boolean from
// concurrent accesses.
//
// The `waiter` allows to wait for the proper termination of the
// logging routine in order to allow the display of the last
// posted log messages.
type StdLogger struct {
	config     configuration
	level      Severity
	logChannel chan traceMessage
	endChannel chan bool
	closed     bool
	locker     sync.Mutex
	waiter     sync.WaitGroup
}

// parseConfiguration :
// Used to retrieve the parameters to apply to the logger from the
// configuration file. A default configuration is provided to work
// in most cases.
//
// Returns the arguments parsed from the configuration file.
func parseConfiguration() configuration {
	config := configuration{
		AppName: "nexora",
		Level:   "info",
		Buffer:  500,
	}

	if viper.IsSet("Logger.Name") {
		config.AppName = viper.GetString("Logger.Name")
	}
	if viper.IsSet("Logger.Level") {
		config.Level = viper.GetString("Logger.Level")
	}
	if viper.IsSet("Logger.Buffer") {
		config.Buffer = viper.GetInt("Logger.Buffer")
	}

	return config
}

// NewStdLogger :
// Used to create a new logger writing to the standard output. The
// created logger will parse the configuration file provided by the
// environment and adapt its configuration right away.
//
// Returns the produced logger.
func NewStdLogger() *StdLogger {
	config := parseConfiguration()

	log := StdLogger{
		config:     config,
		level:      SeverityFromString(config.Level),
		logChannel: make(chan traceMessage, config.Buffer),
		endChannel: make(chan bool),
	}

	// Start logging.
	log.waiter.Add(1)
	go log.performLogging()

	return &log
}

// Release :
// Used to perform the stopping of the active loop meant to handle
// logging to the underlying device. It will block until the method
// actually does return to make sure that the last logs posted will
// be dumped.
func (log *StdLogger) Release() {
	// Request the termination of the active loop.
	log.endChannel <- false

	// Close the log channel.
	log.locker.Lock()
	log.closed = true
	close(log.logChannel)
	log.locker.Unlock()

	// Wait for the routine termination.
	log.waiter.Wait()
}

// Trace :
// Used to perform the log of the input message with the specified
// level for the specified module. The log message is not directly
// transmitted to the logging device but placed in the internal
// buffer so that it can be processed by the active logger loop.
// Note that this function does not block the caller as long as the
// internal buffer is not full.
//
// The `level` describes the severity of the message to log.
//
// The `module` describes the component producing the message.
//
// The `message` describes the content of the message to log.
func (log *StdLogger) Trace(level Severity, module string, message string) {
	// Discard messages below the configured level.
	if level < log.level {
		return
	}

	trace := traceMessage{
		level:   level,
		module:  module,
		content: message,
	}

	// Enqueue the trace to the internal channel if it is not
	// closed yet.
	log.locker.Lock()
	defer log.locker.Unlock()
	if !log.closed {
		log.logChannel <- trace
	}
}

// performLogging :
// Used to perform logging. This method is meant to be launched as
// a go routine and will regularly poll the internal trace channel
// to perform logging.
func (log *StdLogger) performLogging() {
	keepLogging := true

	for keepLogging {
		select {
		case keepLogging = <-log.endChannel:
			// The end channel has been activated, terminate
			// the logging process.
		case trace := <-log.logChannel:
			log.performSingleLog(trace)
		}
	}

	// Iterate over the remaining messages of the log channel.
	for trace := range log.logChannel {
		log.performSingleLog(trace)
	}

	log.waiter.Done()
}

// performSingleLog :
// Used to perform a single log for the input trace. This method is
// called from the active logging loop and performs the conversion
// of the input message into something that can be displayed by the
// associated logging device.
//
// The `trace` describes the message to log.
func (log *StdLogger) performSingleLog(trace traceMessage) {
	out := FormatWithBrackets(log.config.AppName, Magenta)
	out += " " + FormatWithNoBrackets(time.Now().Format("2006-01-02 15:04:05"), Magenta)
	out += " " + trace.level.String()
	if len(trace.module) > 0 {
		out += " " + FormatWithBrackets(trace.module, White)
	}

	out += " " + trace.content

	fmt.Println(out)
}
