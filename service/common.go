package service

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Database and backup locations - variables to allow testing with different paths
var (
	dbPath    = "data/badger"
	backupDir = "data/backups"
)

// SetDatabasePath points the db commands at the badger directory in use.
func SetDatabasePath(path string) {
	if path != "" {
		dbPath = path
	}
}

// NewLogger builds the JSON logger shared by the server and the store.
func NewLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.Level = level
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	}
	log.Out = os.Stdout
	return log
}

// confirm asks a yes/no question on stdin. Anything but y or Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}
