// Package executor drives a TeX worker process (Tectonic, in "texpresso"
// mode) through the speculative-checkpoint protocol: it answers the
// worker's file-system queries against an in-memory VFS, decides when the
// worker should fork itself to create a rewindable checkpoint, and rewinds
// the checkpoint ring when an edit invalidates bytes the worker has already
// consumed. This is the component that turns "edit a paragraph" into
// "redraw a paragraph" instead of "recompile the document" (§4.7).
package executor
