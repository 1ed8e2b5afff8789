// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package resolver decides which questions are visible and which answers a
change invalidates.

Conditional questions form a forest keyed by conditional_on; a question is
visible when it has no condition or its parent's answer equals its
conditional_value (compared on the normalized scalar form).

DependentsToInvalidate looks one level down. Cascade walks the whole chain
breadth-first, so changing has_children to "No" removes children_live_with_you
and custody_schedule in the same save.
*/
package resolver
