// SPDX-License-Identifier: GPL-3.0-or-later
package imapdashboard

import (
	"fmt"
	"time"
)

type ConfigFunc func(c *configuration) error

func DryRun() ConfigFunc {
	return func(c *configuration) error {
		c.DryRun = true

		return nil
	}
}

func WindowSize(size int) ConfigFunc {
	return func(c *configuration) error {
		if size <= 0 {
			return fmt.Errorf("WindowSize must be positive, got %d", size)
		}

		c.WindowSize = size
		return nil
	}
}

func Clock(now func() time.Time) ConfigFunc {
	return func(c *configuration) error {
		if now == nil {
			return fmt.Errorf("Clock cannot be nil")
		}

		c.Now = now
		return nil
	}
}

type configuration struct {
	DryRun bool

	WindowSize int

	Now func() time.Time
}
