// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

// Package log supplies the structured logger cmd/gogit reports progress
// and errors through, replacing the teacher's bare infof/debugf with
// leveled, field-carrying entries.
package log

import (
	"github.com/sirupsen/logrus"
)

const iso8601 = "2006-01-02T15:04:05Z"

// New returns a logrus.Logger configured the way ok-ryoko-turret's
// cmd/turret/logger.go configures its own: UTC timestamps, no color, full
// timestamps, undtruncated level names.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(utcFormatter{
		&logrus.TextFormatter{
			DisableColors:          true,
			DisableLevelTruncation: true,
			FullTimestamp:          true,
			TimestampFormat:        iso8601,
		},
	})
	return logger
}

type utcFormatter struct {
	logrus.Formatter
}

func (u utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}
