// Package confloader provides configuration loading mechanism.
//
// Loader wraps koanf: a YAML file, AUTHSHELL_-prefixed environment
// variables (double underscore separates nesting levels) and flag maps are
// merged into a struct with koanf tags. Watcher uses fsnotify to report
// writes to the configuration file so long-running commands can reload
// settings such as the log level.
package confloader
