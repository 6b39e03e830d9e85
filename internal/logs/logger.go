package logs

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

var logger = log.New(os.Stdout, "", 0)

func LogJSON(level, message string, fields map[string]interface{}) {
	logEntry := map[string]interface{}{
		"severity": level, // "DEBUG", "INFO", "WARN", "ERROR" & "FATAL"
		"message":  message,
		"time":     time.Now().Format(time.RFC3339),
	}
	for k, v := range fields {
		// Les erreurs ne se sérialisent pas en JSON, on garde leur message
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		logEntry[k] = v
	}
	jsonLog, _ := json.Marshal(logEntry)
	logger.Println(string(jsonLog))
}

// SetOutput redirige les logs (utilisé par les tests)
func SetOutput(l *log.Logger) func() {
	previous := logger
	logger = l
	return func() { logger = previous }
}
