package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Keduanya sudah siap dipakai sebelum InitLogger dipanggil (mis. dari test).
var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLogger mengatur output, format dan level kedua logger.
func InitLogger(level string) {
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()

	// Set output untuk InfoLogger ke stdout
	InfoLogger.SetOutput(os.Stdout)
	InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Set output untuk ErrorLogger ke stderr
	ErrorLogger.SetOutput(os.Stderr)
	ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		ErrorLogger.Warnf("Unknown log level %q, falling back to info", level)
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.WarnLevel)
}
