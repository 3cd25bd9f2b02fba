// SPDX-License-Identifier:Apache-2.0

package env

import "testing"

func TestLookup(t *testing.T) {
	t.Setenv(SocketVar, " /tmp/api.sock ")
	t.Setenv(LogLevelVar, "")

	if s, ok := Socket(); !ok || s != "/tmp/api.sock" {
		t.Errorf("socket: got %q, %v", s, ok)
	}
	if _, ok := LogLevel(); ok {
		t.Error("empty variable reported as set")
	}
}
