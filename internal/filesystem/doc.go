/*
Package filesystem provides filesystem operations that retry on NFS stale file
handle errors.

Inputs handed to the converter frequently live on network mounts. A transient
ESTALE (errno 116) from os.Stat, os.Open or os.ReadDir would otherwise be
reported as "file not found", fail a conversion half way, or abort a batch, so
the driver's stat and listing and every delegate's input open go through this
package.

# Usage

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())

	entries, err := filesystem.ReadDirWithRetry(dir, filesystem.DefaultRetryConfig())

# Retry Behavior

Defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only ESTALE triggers a retry. Every other error, including fs.ErrNotExist, is
returned immediately.

# Metrics

When an [Observer] is installed with [SetObserver], retry attempts, successes,
failures, stale errors and total operation duration are reported to it.
*/
package filesystem
