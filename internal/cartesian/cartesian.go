// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cartesian enumerates the cartesian product of slices lazily,
// without materializing the full product.
package cartesian

import "iter"

// Product returns an iterator over the cartesian product of groups.
// Tuples are yielded in odometer order: the last group varies fastest.
// Every yielded tuple is freshly allocated and safe to retain or
// modify. If any group is empty the product is empty. With no groups
// at all the product consists of a single empty tuple, the neutral
// element of the cartesian product.
//
// The returned sequence is single use. Range over Product(groups)
// again to enumerate from the start.
func Product[E any](groups [][]E) iter.Seq[[]E] {
	return func(yield func([]E) bool) {
		for _, group := range groups {
			if len(group) == 0 {
				return
			}
		}

		cursors := make([]int, len(groups))

		for {
			tuple := make([]E, len(groups))
			for i, c := range cursors {
				tuple[i] = groups[i][c]
			}

			if !yield(tuple) {
				return
			}

			// Advance the odometer, rightmost digit first.
			i := len(cursors) - 1
			for ; i >= 0; i-- {
				cursors[i]++
				if cursors[i] < len(groups[i]) {
					break
				}

				cursors[i] = 0
			}

			if i < 0 {
				return
			}
		}
	}
}

// Count returns the number of tuples that Product(groups) yields.
func Count[E any](groups [][]E) int {
	n := 1
	for _, group := range groups {
		n *= len(group)
	}

	return n
}
