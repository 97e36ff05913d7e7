/*
Package domain contains the core domain models for the Espalier form engine.

It defines the fundamental entities of a conditional intake form and keeps
them free of I/O or persistence concerns, following Hexagonal Architecture
principles.

# Key Entities

  - Question: one form item, positioned by step and in-step display order.
  - Option: one selectable answer of a multiple-choice question.
  - ConditionalDisplay: the visibility rule of a question, combining one or
    more Conditions with a group operator.
  - Answers / AnswerValue: the labels collected per question at runtime.

The package also hosts NormalizeConditional, the single entry point through
which both the canonical and the legacy stored shapes of a visibility rule
become the in-memory representation every other package works with.
*/
package domain
