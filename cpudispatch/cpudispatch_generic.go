// +build !amd64,!arm64 appengine

package cpudispatch

// Other architectures get the universal scalar fallback only; caps is left
// at its zero value (all capabilities false).
func init() {}
