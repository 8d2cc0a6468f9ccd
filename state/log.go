package state

import (
	cosmoslog "cosmossdk.io/log"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// iavlLogger routes iavl's cosmos logging into the node's cometbft logger.
type iavlLogger struct {
	cmtlog.Logger
}

var _ cosmoslog.Logger = iavlLogger{}

func newIAVLLogger(lg cmtlog.Logger) cosmoslog.Logger {
	return iavlLogger{Logger: lg.With("store", "iavl")}
}

// Warn is kept at info level with a marker; cometbft has no warn level.
func (l iavlLogger) Warn(msg string, keyVals ...any) {
	l.Logger.Info(msg, append(keyVals, "severity", "warn")...)
}

func (l iavlLogger) With(keyVals ...any) cosmoslog.Logger {
	return iavlLogger{Logger: l.Logger.With(keyVals...)}
}

func (l iavlLogger) Impl() any {
	return l.Logger
}
