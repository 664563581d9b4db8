// Package sysinfo implements the host preflight probes the setup
// sequence runs before touching the stack: privilege detection, free
// disk space measurement, and GPU passthrough verification.
//
// The GPU probes shell out to nvidia-smi and docker because there is no
// portable API for "can containers see the GPU" - running a throwaway
// CUDA container is the authoritative test.
package sysinfo
