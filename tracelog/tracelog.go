// Package tracelog provides verbose wire-level logging with hex dump
// capability, scoped to this module's single protocol: no filter map is
// needed when there is only ever one protocol to filter.
package tracelog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes timestamped trace lines to a dedicated log file. The
// zero value is not usable; construct one with New.
type Logger struct {
	file   *os.File
	mu     sync.Mutex
	closed bool
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// New creates a logger writing to path, truncating any existing file.
func New(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("tracelog: open %s: %w", path, err)
	}

	l := &Logger{file: file}
	l.Log("trace logging started - %s", time.Now().Format(time.RFC3339))
	return l, nil
}

// SetGlobal installs l as the logger the package-level TX/RX/Connect/...
// functions write to. Pass nil to disable tracing.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the currently installed global logger, or nil.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Log writes a formatted, timestamped line.
func (l *Logger) Log(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.file, "%s %s\n", timestamp, fmt.Sprintf(format, args...))
}

// LogTX logs a transmitted frame with a hex dump.
func (l *Logger) LogTX(tag string, data []byte) {
	l.logPacket(tag, "TX", data)
}

// LogRX logs a received frame with a hex dump.
func (l *Logger) LogRX(tag string, data []byte) {
	l.logPacket(tag, "RX", data)
}

func (l *Logger) logPacket(tag, direction string, data []byte) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.file, "%s [%s] %s (%d bytes):\n", timestamp, tag, direction, len(data))
	fmt.Fprintf(l.file, "%s\n", hexDump(data))
}

// LogConnect logs a connection attempt.
func (l *Logger) LogConnect(address string) {
	l.Log("CONNECT to %s", address)
}

// LogConnectSuccess logs a successful connect, including the negotiated
// session parameters (pdu size, max concurrent jobs).
func (l *Logger) LogConnectSuccess(address, details string) {
	l.Log("CONNECTED to %s - %s", address, details)
}

// LogConnectError logs a failed connect attempt.
func (l *Logger) LogConnectError(address string, err error) {
	l.Log("CONNECT FAILED to %s: %v", address, err)
}

// LogDisconnect logs a session teardown.
func (l *Logger) LogDisconnect(address, reason string) {
	l.Log("DISCONNECT from %s: %s", address, reason)
}

// LogError logs an error with a short context label.
func (l *Logger) LogError(context string, err error) {
	l.Log("ERROR in %s: %v", context, err)
}

// Close flushes the footer line and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.file, "%s trace logging ended\n", timestamp)
	return l.file.Close()
}

// hexDump renders data as offset-prefixed hex with an ASCII gutter, 16
// bytes per line.
//
//	0000: 03 00 00 16 11 E0 00 00  00 00 00 C0 01 0A C1 02  ................
func hexDump(data []byte) string {
	if len(data) == 0 {
		return "    (empty)"
	}

	var sb strings.Builder
	for offset := 0; offset < len(data); offset += 16 {
		sb.WriteString(fmt.Sprintf("    %04X: ", offset))
		for i := 0; i < 8; i++ {
			if offset+i < len(data) {
				sb.WriteString(fmt.Sprintf("%02X ", data[offset+i]))
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString(" ")
		for i := 8; i < 16; i++ {
			if offset+i < len(data) {
				sb.WriteString(fmt.Sprintf("%02X ", data[offset+i]))
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString(" ")
		for i := 0; i < 16; i++ {
			if offset+i < len(data) {
				b := data[offset+i]
				if b >= 32 && b < 127 {
					sb.WriteByte(b)
				} else {
					sb.WriteByte('.')
				}
			}
		}
		sb.WriteString("\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Package-level convenience helpers write to the global logger. tag
// identifies the wire layer (e.g. "s7") for readability in a file that
// may later carry more than one kind of trace line.

// TX logs a transmitted frame via the global logger, a no-op if none is
// installed.
func TX(tag string, data []byte) {
	if l := Global(); l != nil {
		l.LogTX(tag, data)
	}
}

// RX logs a received frame via the global logger, a no-op if none is
// installed.
func RX(tag string, data []byte) {
	if l := Global(); l != nil {
		l.LogRX(tag, data)
	}
}

// Connect logs a connection attempt via the global logger.
func Connect(address string) {
	if l := Global(); l != nil {
		l.LogConnect(address)
	}
}

// ConnectSuccess logs a successful connect via the global logger.
func ConnectSuccess(address, details string) {
	if l := Global(); l != nil {
		l.LogConnectSuccess(address, details)
	}
}

// ConnectError logs a failed connect via the global logger.
func ConnectError(address string, err error) {
	if l := Global(); l != nil {
		l.LogConnectError(address, err)
	}
}

// Disconnect logs a session teardown via the global logger.
func Disconnect(address, reason string) {
	if l := Global(); l != nil {
		l.LogDisconnect(address, reason)
	}
}

// Error logs an error via the global logger.
func Error(context string, err error) {
	if l := Global(); l != nil {
		l.LogError(context, err)
	}
}
