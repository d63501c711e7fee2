package logging

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileAppender writes JSON log lines to a file that is rotated once it grows past MaxSizeMB.
type FileAppender struct {
	file    *lumberjack.Logger
	encoder zapcore.Encoder
}

// NewFileAppender creates an appender writing to path, keeping at most two compressed backups.
func NewFileAppender(path string, maxSizeMB int) *FileAppender {
	return &FileAppender{
		file: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: 2,
			Compress:   true,
		},
		encoder: zapcore.NewJSONEncoder(NewEncoderConfig()),
	}
}

// Write outputs the log entry as a single JSON line.
func (appender *FileAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := appender.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = appender.file.Write(buf.Bytes())
	return err
}

// Sync is a no-op, writes go straight to the file.
func (appender *FileAppender) Sync() error {
	return nil
}

// Close closes the current log file.
func (appender *FileAppender) Close() error {
	return appender.file.Close()
}
