// Package synctex maintains an incremental index over a growing .synctex
// file and answers the two SyncTeX queries TeXpresso's editor integration
// needs: given a click on a rendered page, which source line drew it
// (Scan); given a source line, where does it land on the page (SetTarget
// + FindTarget). It mirrors the original's synctex_t exactly, including
// its rollback-on-truncation behavior so a shrinking recompile (handled
// the same way incdvi's log rewind is) never desyncs the index from the
// file on disk (§4.5).
package synctex
