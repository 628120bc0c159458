// Package confloader loads linekv configuration with koanf and watches the
// configuration file with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (LINEKV_ prefix, "__" between path segments)
//  3. YAML configuration file
//  4. Values already set in the target struct (defaults)
package confloader
