package background

import (
	"fmt"
	"sync"
	"time"

	"github.com/Andromalius22/Nexora/pkg/logger"
)

// Process :
// Defines a process that can be started with a certain
// repeatability and will spawn a go routine to do so.
// The function to execute is provided as input so that
// it is customizable.
//
// The `interval` defines the duration between two calls
// of the function by this process.
//
// The `operation` defines the function to be executed
// by the process.
//
// The `log` defines a way for this process to notify
// information and failures to the user.
//
// The `module` defines a string identifying the func
// attached to this process to make logs more relevant.
//
// The `lock` allows to protect concurrent accesses
// to some internal variables.
//
// The `running` defines whether or not the main
// processing loop is running.
//
// The `termination` is a channel used to terminate
// the execution of the main processing loop.
//
// The `waiter` allows to wait for this process to
// complete before returning from the `Stop` func.
type Process struct {
	interval  time.Duration
	operation OperationFunc
	log       logger.Logger
	module    string

	lock        sync.Mutex
	running     bool
	termination chan bool
	waiter      sync.WaitGroup
}

// OperationFunc :
// Defines an operation that can be associated to a
// process object. It should take no argument and
// return any error encountered while executing it.
// An in-flight iteration always runs to completion
// before the process honors a stop request.
type OperationFunc func() error

// ErrAlreadyRunning : Indicates that this process is
// already running and cannot be started again.
var ErrAlreadyRunning = fmt.Errorf("unable to start already running process")

// ErrInvalidOperation : Indicates that the operation
// associated to this process is not valid.
var ErrInvalidOperation = fmt.Errorf("invalid operation to start process")

// NewProcess :
// Defines a new process object with the specified
// interval and logger.
//
// The `interval` defines the time interval between
// two consecutive calls to the main process func.
//
// The `log` defines the logger to use to notify
// info and errors.
//
// Returns the built-in object.
func NewProcess(interval time.Duration, log logger.Logger) *Process {
	return &Process{
		interval:    interval,
		log:         log,
		termination: make(chan bool, 1),
	}
}

// WithModule :
// Assigns a new string as the module name for this
// process.
//
// The `module` defines the name of the module to
// assign to this object.
//
// Returns this process to allow chain calling.
func (p *Process) WithModule(module string) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.module = module

	return p
}

// WithOperation :
// Defines the core processing function to execute
// when needed.
//
// The `operation` defines the processing function
// to execute at each interval.
//
// Returns this process to allow chain calling.
func (p *Process) WithOperation(operation OperationFunc) *Process {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.operation = operation

	return p
}

// Start :
// Used to start the process associated with this
// object. Note that we will check that the operation
// is valid otherwise an error is returned.
//
// Returns any error.
func (p *Process) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	if p.operation == nil {
		return ErrInvalidOperation
	}

	p.running = true
	p.waiter.Add(1)

	go p.activeLoop()

	return nil
}

// Stop :
// Used to indicate the termination of the active
// loop for this process. It waits for the process
// to finish any in-flight iteration before it does
// return.
func (p *Process) Stop() {
	p.lock.Lock()

	if !p.running {
		p.lock.Unlock()
		return
	}
	p.running = false
	p.lock.Unlock()

	// The process is running, stop it and wait for
	// the loop to terminate.
	p.termination <- true
	p.waiter.Wait()
}

// activeLoop :
// Main processing loop for this object. It will sleep
// for the required period of time and execute the
// attached operation.
func (p *Process) activeLoop() {
	ticker := time.NewTicker(p.interval)

	defer func() {
		if err := recover(); err != nil {
			p.log.Trace(logger.Critical, p.module, fmt.Sprintf("Recovered from error in process (err: %v)", err))
		}

		ticker.Stop()
		p.waiter.Done()
	}()

	for {
		select {
		case <-p.termination:
			// Termination requested.
			return
		case <-ticker.C:
			if err := p.operation(); err != nil {
				p.log.Trace(logger.Error, p.module, fmt.Sprintf("Caught error while executing process (err: %v)", err))
			}
		}
	}
}
