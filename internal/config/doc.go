// Package config defines the format-agnostic recipe model for the
// application, along with the Loader interface for reading a recipe from
// a concrete configuration format. The `config.Recipe` is the single
// source of truth for the `pipeline` and `launch` packages; concrete
// loader implementations, such as for HCL, live in separate packages.
package config
