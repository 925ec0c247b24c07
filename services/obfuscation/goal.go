// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package obfuscation

import (
	"math"

	"github.com/AleutianAI/AleutianObfuscate/services/obfuscation/search"
)

// GoalCheck reports whether a node satisfies the search goal: the
// node is not the root, its divergence has been evaluated, and its
// Jensen-Shannon distance has reached the context's goal distance.
func GoalCheck(node *search.Node[State], ctx *Context) bool {
	state := node.State()

	if state.Meta().JSD == nil || ctx.Meta.GoalJSDist == nil {
		return false
	}

	jsDist := math.Sqrt(2.0 * *state.Meta().JSD)
	return node.Depth() > 0 && jsDist >= *ctx.Meta.GoalJSDist
}
