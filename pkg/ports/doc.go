/*
Package ports defines the driven ports (interfaces) for the Espalier editor.

These interfaces decouple the editor and compiler from external
implementations, allowing the question set to live in memory, on disk,
or in Redis without the core noticing.

# Key Interfaces

  - QuestionStore: persistence of question records per category, with
    soft-delete semantics.

The package also exports RunQuestionStoreContract, a reusable test suite
every adapter (including third-party ones) runs against its own
implementation.
*/
package ports
