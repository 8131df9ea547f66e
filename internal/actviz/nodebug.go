//go:build !debug
// +build !debug

package actviz

import "fmt"

// DebugLog prints only when Debug is switched on at runtime (DEBUG env).
func DebugLog(format string, args ...interface{}) {
	if !Debug {
		return
	}
	fmt.Printf("[DEBUG] "+format+"\n", args...)
}
