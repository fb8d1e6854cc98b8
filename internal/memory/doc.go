// Package memory configures the Go runtime memory limit for the converter.
//
// Decoding a large image can transiently allocate several times the file size.
// Inside a container the kernel OOM killer would end the process before the
// Go garbage collector felt any pressure, so when MEMORY_LIMIT is provided
// (typically via the Kubernetes Downward API) a soft limit is derived from it:
//
//	GOMEMLIMIT = MEMORY_LIMIT * MEMORY_RATIO   (ratio defaults to 0.85)
//
// An explicit GOMEMLIMIT always wins and is only reported.
//
// # Usage
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ...
//	}
package memory
