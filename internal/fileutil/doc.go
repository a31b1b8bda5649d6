// Package fileutil provides filesystem helpers for staged pipeline output.
package fileutil
