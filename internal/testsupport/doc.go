// Package testsupport provides shared helpers for constructing isolated test
// configurations and stores.
package testsupport
