// Package toolchain materializes the dependency manager into an image,
// either by downloading a single-binary release artifact or by running the
// recipe's install command. Installation failures are fatal to the build;
// only the download itself is retried.
package toolchain
