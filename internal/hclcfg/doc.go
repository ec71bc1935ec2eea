// Package hclcfg is the HCL implementation of the config.Loader interface.
// It parses a recipe file with hclparse/gohcl and translates the decoded
// schema into the format-agnostic config.Recipe model.
package hclcfg
