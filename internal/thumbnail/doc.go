// Package thumbnail composites title cards over captured video frames.
package thumbnail
