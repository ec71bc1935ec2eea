// Package app wires the application together: configuration, logging,
// recipe loading, and the build/run command dispatch.
package app
