/*
Package editor orchestrates the visual question editor for one category.

A Session owns the in-memory question list, validates condition dialogs,
pushes every mutation through the ports.QuestionStore, and recompiles
the flow graph in full after each change. State is an explicit struct
rather than ambient UI globals, so the whole orchestration is unit
testable without a rendering layer.
*/
package editor
