// Package editorproto implements the editor-facing protocol (§4.8, §6.2):
// a framed command/response stream carried over stdin/stdout in either of
// two textual encodings (S-expressions or JSON), a shared intermediate
// Value model the two framings both parse into, the line/column→byte
// offset translation changes need, and the glue that applies a parsed
// command to an executor.Engine.
package editorproto
