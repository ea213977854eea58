package transport

import (
	"encoding/json"
	"fmt"

	"nativeaudio/internal/log"
)

// LoggingTransport implements the Transport interface by logging data to the console.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debug("transport: using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data as JSON, or raw if it does not marshal.
func (lt *LoggingTransport) Send(data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Info("event", "data", fmt.Sprintf("%+v", data))
		return nil // Logging transport never fails to "send"
	}
	log.Info("event", "data", string(jsonData))
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
