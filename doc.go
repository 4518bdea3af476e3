// Package nurbs provides a geometry kernel for interactive editing of
// rational B-spline (NURBS) surfaces, together with the machinery that keeps
// a set of adjoining surface patches consistent while they are edited.
//
// # Surfaces
//
// The core type is [Surface], a rational tensor-product surface defined by a
// control-point grid, per-point weights, and two clamped knot vectors. It
// supports exact evaluation ([Surface.Evaluate]), first-order derivatives and
// normals ([Surface.EvaluateWithDerivatives], [Surface.Normal]), triangle
// tessellation ([Surface.Tessellate]), and shape-preserving refinement via
// Boehm knot insertion ([Surface.InsertKnotU], [Surface.InsertKnotV]).
//
// The low-level basis-function routines ([FindSpan], [BasisFunctions],
// [BasisFunctionDerivatives]) follow the classical algorithms of Piegl and
// Tiller and are exported for callers that need them directly.
//
// # Patches, groups, and continuity
//
// An editable surface is wrapped in a [Patch], which gives it a stable
// identity, display state, and a change-notification contract:
// [Patch.ApplyControlPointMove] is the only sanctioned way to move a control
// point of a live patch, and it notifies every subscriber of the move.
//
// A [PatchGroup] owns a set of patches and the [Constraint] values that tie
// their boundaries together with positional (G0) or tangential (G1)
// continuity. Constraints reference patches by ID, never by pointer, so
// removing a patch cascades cleanly. Enforcement is a single explicit pass
// after a move; chains of three or more constrained patches need one pass per
// affected patch.
//
// # History
//
// All persistent mutation goes through [History], a reversible-command log
// with the usual execute/undo/redo semantics. Command constructors exist for
// every editing operation: single and batched control-point moves, knot
// insertion, patch attachment and deletion, and continuity changes. An
// interactive drag that has already mutated geometry can be captured after
// the fact with [AlreadyApplied].
//
// # Exchange
//
// The package includes a codec ([EncodeGroup], [DecodeGroup]) for a compact
// interchange representation using reduced knot vectors and homogeneous
// control points. Continuity between patches is not persisted; it is inferred
// on decode from coincident boundaries.
//
// The kernel is single-threaded and call-driven. No type in this package is
// safe for concurrent use.
package nurbs
