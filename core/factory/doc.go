// Package factory provides a generic registry used to build charging
// policies and result sinks from {type, conf} configuration entries.
package factory
