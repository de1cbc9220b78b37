/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logutil

import (
	"fmt"
	"strings"

	"github.com/hyperledger/aries-framework-go/component/log"
)

// CommandLogger logs the outcome of the methods of one controller command.
type CommandLogger struct {
	logger  *log.Log
	command string
}

// NewCommandLogger returns a logger for command.
func NewCommandLogger(logger *log.Log, command string) *CommandLogger {
	return &CommandLogger{logger: logger, command: command}
}

// Error logs a failed method call.
func (c *CommandLogger) Error(method, errMsg string, data ...string) {
	c.logger.Errorf("command=[%s] action=[%s] %s errMsg=[%s]", c.command, method, strings.Join(data, " "), errMsg)
}

// Info logs a rejected method call.
func (c *CommandLogger) Info(method, msg string, data ...string) {
	c.logger.Infof("command=[%s] action=[%s] %s msg=[%s]", c.command, method, strings.Join(data, " "), msg)
}

// Debug logs a method call.
func (c *CommandLogger) Debug(method, msg string, data ...string) {
	c.logger.Debugf("command=[%s] action=[%s] %s msg=[%s]", c.command, method, strings.Join(data, " "), msg)
}

// KeyValue formats a key/value pair for the data of a log line.
func KeyValue(key, val string) string {
	return fmt.Sprintf("%s=[%s]", key, val)
}
