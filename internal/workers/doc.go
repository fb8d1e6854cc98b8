/*
Package workers sizes thread pools for the libraries the converter drives.

runtime.NumCPU reports the host's CPUs even inside a container with a CPU
limit, while GOMAXPROCS follows the limit. Count and ForCPU derive their
answer from GOMAXPROCS so that libvips does not start more threads than the
container may run:

	vips.Startup(&vips.Config{ConcurrencyLevel: workers.ForCPU(4)})

Set VIPS_CONCURRENCY to a positive integer to pin the count.
*/
package workers
