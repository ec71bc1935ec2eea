// Package pipeline executes the linear build pipeline that turns a recipe
// and a source tree into a sealed image directory. Phases run strictly in
// order, each one advancing the build through a one-way state machine;
// the first failure aborts the build and no image is sealed.
package pipeline
