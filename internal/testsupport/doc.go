// Package testsupport holds helpers shared by package tests: a config rooted
// in a per-test temp directory, a manifest opener and small file helpers.
package testsupport
