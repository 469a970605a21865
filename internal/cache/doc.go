// Package cache implements the two persisted caches of §6.5: a format
// cache keyed on the dependencies that produced a compiled format, and a
// bundle cache that mirrors individual files fetched from a subprocess
// resource bundle onto disk, both rooted at $XDG_CACHE_HOME/texpresso or
// $HOME/.cache/texpresso.
package cache
