//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2025 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

package errors

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// GoWrapper runs f on its own goroutine and recovers any panic, so a
// background task cannot take the whole server down with it.
func GoWrapper(f func(), logger logrus.FieldLogger) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("recovered from panic: %v", r)
				debug.PrintStack()
			}
		}()
		f()
	}()
}
