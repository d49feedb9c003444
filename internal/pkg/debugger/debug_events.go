package debugger

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugPrintEnvelope logs an intercepted chat response body. It is a no-op
// unless the logger has debug enabled, so the pretty-print cost is never
// paid in production.
func DebugPrintEnvelope(logger *zap.Logger, raw []byte) {
	if logger == nil || !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, raw, "", "  "); err == nil {
		logger.Debug("Intercepted chat envelope", zap.String("body", prettyJSON.String()))
	} else {
		logger.Debug("Intercepted non-JSON chat body", zap.ByteString("body", raw))
	}
}
