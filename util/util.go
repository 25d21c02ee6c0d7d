package util

import (
	"go.uber.org/zap"
)

var Debug uint64 = 1

var logger = zap.NewNop().Sugar()

// SetLogger routes DPrintf output to l. A nil l silences it.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.Sugar()
}

// Logger returns the logger DPrintf writes to.
func Logger() *zap.Logger {
	return logger.Desugar()
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		logger.Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}
