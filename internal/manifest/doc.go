// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package manifest holds the declarative description of every build-install
// pipeline gpuforge knows about.
//
// # Core Concepts
//
//   - Pipeline: one external project. It records where to clone it from, the
//     exact commit to build, and the configure/build/install commands.
//
//   - Resolved: a Pipeline whose command expressions have been evaluated
//     against the probed host environment. It contains only plain strings.
//
// Why HCL?
//
// The pipelines are data, not code. Keeping them in a single HCL document
// (embedded into the binary, so the constants still cannot be changed at run
// time) lets the orchestrator iterate one ordered list of records instead of
// repeating the step logic three times with ad-hoc variation.
//
// Why keep commands as hcl.Expression?
//
// Some arguments depend on facts that are only known after preflight, such as
// the interpreter's major version or the CUDA install root. Decoding leaves
// those expressions untouched; Resolve evaluates them once, with the
// environment passed in explicitly, so nothing reads ambient state in the
// middle of a run.
package manifest
