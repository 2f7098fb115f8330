// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package auth

// MaxLoginHistory is the number of login events retained per account.
const MaxLoginHistory = 8

// AppendLoginEvent returns a new history with event first, dropping the
// oldest entry when the history is already full. The input is not modified.
func AppendLoginEvent(history []LoginEvent, event LoginEvent) []LoginEvent {
	keep := len(history)
	if keep >= MaxLoginHistory {
		keep = MaxLoginHistory - 1
	}

	out := make([]LoginEvent, 0, keep+1)
	out = append(out, event)
	out = append(out, history[:keep]...)
	return out
}
