package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrNoPort           = errors.New("no serial port selected")
	ErrInvalidBaud      = errors.New("baud rate must be positive")
	ErrAlreadyConnected = errors.New("already connected")
)

// ConnectionError reports a failed attempt to open a port. It is not retried.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Port == "" {
		return fmt.Sprintf("cannot connect: %v", e.Err)
	}
	return fmt.Sprintf("cannot connect to %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError is a transient read or decode failure while connected.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("error reading data: %v", e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// PersistenceError is a failed write to a sink. The record stays in memory.
type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("error saving data (%s): %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
