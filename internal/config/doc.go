// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the appstart configuration.
//
// Configuration lives in a CUE file that is validated against an embedded
// schema and merged into Viper on top of the built-in defaults. A missing
// config file is not an error; defaults apply.
package config
