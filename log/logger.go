package log

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hcanalytics/hdw-app/conf"
	"github.com/hcanalytics/hdw-app/hdw/constants"
)

var (
	Extract   logrus.FieldLogger
	Transform logrus.FieldLogger
	Load      logrus.FieldLogger
	Quality   logrus.FieldLogger
	Report    logrus.FieldLogger
	Pipeline  logrus.FieldLogger
)

func init() {
	SetupLoggers()
}

// SetupLoggers (re)builds the package level loggers from the current
// configuration. Called once at startup; tests call it again after changing
// log file settings.
func SetupLoggers() {
	Extract = Logger(logrus.New(), conf.GetEnv("HDW_EXTRACT_LOG"),
		"extract", conf.GetEnv("DEPLOYMENT_TARGET"))
	Transform = Logger(logrus.New(), conf.GetEnv("HDW_TRANSFORM_LOG"),
		"transform", conf.GetEnv("DEPLOYMENT_TARGET"))
	Load = Logger(logrus.New(), conf.GetEnv("HDW_LOAD_LOG"),
		"load", conf.GetEnv("DEPLOYMENT_TARGET"))
	Quality = Logger(logrus.New(), conf.GetEnv("HDW_QUALITY_LOG"),
		"quality", conf.GetEnv("DEPLOYMENT_TARGET"))
	Report = Logger(logrus.New(), conf.GetEnv("HDW_REPORT_LOG"),
		"report", conf.GetEnv("DEPLOYMENT_TARGET"))
	Pipeline = Logger(logrus.New(), conf.GetEnv("HDW_PIPELINE_LOG"),
		"pipeline", conf.GetEnv("DEPLOYMENT_TARGET"))
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment,
		"source_app":  "hdw",
		"version":     constants.Version})
}
