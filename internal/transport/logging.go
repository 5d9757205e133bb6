// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	applog "aura/internal/log"
)

// LoggingTransport writes each frame to the debug log. Useful when
// running headless without a connected client.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: using logging transport")
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(data any) error {
	if applog.GetLevel() > applog.LevelDebug {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		applog.Debugf("Transport: frame (%T): %+v", data, data)
		return nil
	}
	applog.Debugf("Transport: frame %s", payload)
	return nil
}

func (lt *LoggingTransport) Close() error { return nil }

var _ Transport = (*LoggingTransport)(nil)
