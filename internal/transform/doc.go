// Package transform defines the contract every chainable transform kind
// implements, the immutable configuration handed to it, and the registry
// that maps variant names (sha256, b64, aes128cbc, ...) to kinds.
//
// A Transform is built once with its final configuration and upstream
// arguments. Apply turns it into a pull function; Open wraps that function
// in a stream.PullStream so the next transform (or a sink) can read it.
package transform
