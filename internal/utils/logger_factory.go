package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
	logTimestampFieldNameConstant        = "timestamp"
	logLevelFieldNameConstant            = "level"
	logMessageFieldNameConstant          = "message"
	logCallerFieldNameConstant           = "caller"
)

// LogLevel enumerates supported diagnostic log levels.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log encodings.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerOutputs groups the diagnostic logger with the human-facing console logger.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers for the requested level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds the diagnostic and console loggers. Console output is only
// emitted when the console format is requested; structured runs get a no-op console logger.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := resolveZapLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	normalizedFormat := LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat))))
	errorSink := zapcore.Lock(os.Stderr)

	switch normalizedFormat {
	case LogFormatStructured:
		encoder := zapcore.NewJSONEncoder(structuredEncoderConfig())
		diagnosticLogger := zap.New(zapcore.NewCore(encoder, errorSink, zapLevel))
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.NewNop()}, nil
	case LogFormatConsole:
		encoder := zapcore.NewConsoleEncoder(consoleEncoderConfig())
		diagnosticLogger := zap.New(zapcore.NewCore(encoder, errorSink, zapLevel))
		consoleLogger := zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(messageOnlyEncoderConfig()), errorSink, zap.DebugLevel))
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: consoleLogger}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormat)
	}
}

func resolveZapLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zap.DebugLevel, nil
	case LogLevelInfo:
		return zap.InfoLevel, nil
	case LogLevelWarn:
		return zap.WarnLevel, nil
	case LogLevelError:
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevel)
	}
}

func structuredEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = logTimestampFieldNameConstant
	encoderConfig.LevelKey = logLevelFieldNameConstant
	encoderConfig.MessageKey = logMessageFieldNameConstant
	encoderConfig.CallerKey = logCallerFieldNameConstant
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfig
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfig
}

func messageOnlyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     logMessageFieldNameConstant,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
