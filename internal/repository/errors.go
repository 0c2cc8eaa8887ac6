// Package repository holds the errors shared by every storage backend.
package repository

import "errors"

var ErrSettingsNotFound = errors.New("settings not found")
