// SPDX-License-Identifier:Apache-2.0

// Package logging sets up structured logging in a uniform way.
package logging

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

type Level string

const (
	LevelAll   Level = "all"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelNone  Level = "none"
)

// Levels lists the accepted level names, for flag help.
var Levels = []string{
	string(LevelAll),
	string(LevelDebug),
	string(LevelInfo),
	string(LevelWarn),
	string(LevelError),
	string(LevelNone),
}

// Init returns a logfmt logger writing to w, configured with common
// settings like timestamping and source code locations, that drops
// entries below lvl.
func Init(w io.Writer, lvl string) (log.Logger, error) {
	opt, err := parseLevel(lvl)
	if err != nil {
		return nil, err
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, opt)
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func parseLevel(lvl string) (level.Option, error) {
	switch Level(strings.ToLower(lvl)) {
	case LevelAll:
		return level.AllowAll(), nil
	case LevelDebug:
		return level.AllowDebug(), nil
	case LevelInfo:
		return level.AllowInfo(), nil
	case LevelWarn:
		return level.AllowWarn(), nil
	case LevelError:
		return level.AllowError(), nil
	case LevelNone:
		return level.AllowNone(), nil
	}
	return nil, errors.Errorf("failed to parse log level: %s, must be one of: [%s]", lvl, strings.Join(Levels, ", "))
}
